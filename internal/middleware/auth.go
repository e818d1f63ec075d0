package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Novip1906/tasks-http/internal/contextkeys"
	appErrors "github.com/Novip1906/tasks-http/internal/errors"
	"github.com/Novip1906/tasks-http/internal/models"
	"github.com/Novip1906/tasks-http/pkg/logging"
)

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.TokenClaims, error)
}

// Auth rejects requests without a valid token in the Authorization header.
// On success the claims and a user-scoped logger are stored in the request
// context.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := contextkeys.GetLogger(ctx).With(slog.String("middleware", "auth"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Info("authorization header empty")
				writeError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			// any scheme is accepted; the second field must verify as a token
			_, token, _ := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if token == "" {
				log.Info("missing token after scheme")
				writeError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			claims, err := verifier.Verify(ctx, token)
			switch {
			case err == nil:
			case errors.Is(err, appErrors.ErrInvalidToken):
				log.Info("token rejected", logging.Err(err))
				writeError(w, http.StatusForbidden, "Invalid token")
				return
			case errors.Is(err, appErrors.ErrMissingToken):
				writeError(w, http.StatusUnauthorized, "Access token required")
				return
			default:
				log.Error("verify token error", logging.Err(err))
				writeError(w, http.StatusInternalServerError, internalErrorMessage)
				return
			}

			log = contextkeys.GetLogger(ctx).With(slog.Int64("user_id", claims.UserId))
			log.Debug("token is ok", slog.String("username", claims.Username))

			ctx = contextkeys.WithTokenClaims(ctx, claims)
			ctx = contextkeys.WithLogger(ctx, log)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
