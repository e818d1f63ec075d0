package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "revoked:"

// RedisStorage keeps the token denylist in redis so it survives restarts
// and is shared between instances.
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(ctx context.Context, addr, password string, db int, log *slog.Logger) (*RedisStorage, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cannot connect to redis: %w", err)
	}
	log.Info("Connected to Redis successfully", slog.String("address", addr))

	return &RedisStorage{client: rdb}, nil
}

func (r *RedisStorage) Revoke(ctx context.Context, tokenId string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedPrefix+tokenId, 1, ttl).Err()
}

func (r *RedisStorage) IsRevoked(ctx context.Context, tokenId string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedPrefix+tokenId).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
