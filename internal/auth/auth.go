package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/Novip1906/tasks-http/internal/errors"
	"github.com/Novip1906/tasks-http/internal/models"
	"github.com/Novip1906/tasks-http/pkg/logging"
)

type Denylist interface {
	Revoke(ctx context.Context, tokenId string, until time.Time) error
	IsRevoked(ctx context.Context, tokenId string) (bool, error)
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users    map[string]models.User
	secret   []byte
	ttl      time.Duration
	denylist Denylist
	log      *slog.Logger
	now      func() time.Time
}

func NewAuthService(secret string, ttl time.Duration, users []models.User, denylist Denylist, log *slog.Logger) (*AuthService, error) {
	if secret == "" {
		return nil, errors.New("empty signing secret")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	byName := make(map[string]models.User, len(users))
	for _, u := range users {
		if _, dup := byName[u.Username]; dup {
			return nil, fmt.Errorf("duplicate username %q", u.Username)
		}
		byName[u.Username] = u
	}

	return &AuthService{
		users:    byName,
		secret:   []byte(secret),
		ttl:      ttl,
		denylist: denylist,
		log:      log,
		now:      time.Now,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, appErrors.ErrMissingFields
	}

	log := s.log.With(slog.String("username", username))

	user, found := s.users[username]
	hash := demoPasswordHash
	if found {
		hash = user.PasswordHash
	}

	// Unknown users still pay for one comparison so timing does not leak which names exist.
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if !found {
		log.Info("login failed: unknown user")
		return nil, appErrors.ErrInvalidCredentials
	}
	if err != nil {
		log.Info("login failed: wrong password")
		return nil, appErrors.ErrInvalidCredentials
	}

	token, err := encodeJWTToken(&user, s.secret, s.now(), s.ttl)
	if err != nil {
		log.Error("sign token error", logging.Err(err))
		return nil, fmt.Errorf("%w: %w", appErrors.ErrInternal, err)
	}

	log.Info("user logged in", slog.Int64("user_id", user.Id))

	return &LoginResult{
		Token: token,
		User:  &models.User{Id: user.Id, Username: user.Username},
	}, nil
}

func (s *AuthService) Verify(ctx context.Context, token string) (*models.TokenClaims, error) {
	if token == "" {
		return nil, appErrors.ErrMissingToken
	}

	claims, err := decodeJWTToken(token, s.secret, s.now)
	if err != nil {
		return nil, err
	}

	if s.denylist != nil && claims.TokenId != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.TokenId)
		if err != nil {
			return nil, fmt.Errorf("%w: check denylist: %w", appErrors.ErrInternal, err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: %w", appErrors.ErrInvalidToken, appErrors.ErrRevokedToken)
		}
	}

	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *models.TokenClaims) error {
	if s.denylist == nil || claims.TokenId == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.TokenId, claims.ExpiresAt); err != nil {
		return fmt.Errorf("%w: revoke token: %w", appErrors.ErrInternal, err)
	}
	return nil
}
