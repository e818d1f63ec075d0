package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	appErrors "github.com/Novip1906/tasks-http/internal/errors"
	"github.com/Novip1906/tasks-http/internal/models"
)

type tokenClaims struct {
	UserId   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func encodeJWTToken(user *models.User, secret []byte, issuedAt time.Time, ttl time.Duration) (string, error) {
	claims := tokenClaims{
		UserId:   user.Id,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// decodeJWTToken checks signature, algorithm and expiry against now.
func decodeJWTToken(tokenString string, secret []byte, now func() time.Time) (*models.TokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, fmt.Errorf("%w: %w", appErrors.ErrInvalidToken, appErrors.ErrExpiredToken)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", appErrors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, appErrors.ErrInvalidToken
	}

	result := &models.TokenClaims{
		UserId:   claims.UserId,
		Username: claims.Username,
		TokenId:  claims.ID,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}
