package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Novip1906/tasks-http/internal/errors"
	"github.com/Novip1906/tasks-http/internal/models"
	"github.com/Novip1906/tasks-http/internal/storage"
	"github.com/Novip1906/tasks-http/pkg/logging"
)

const testSecret = "test-secret"

func newTestService(t *testing.T) *AuthService {
	t.Helper()
	s, err := NewAuthService(testSecret, 24*time.Hour, DefaultUsers(), storage.NewMemoryDenylist(), logging.Discard())
	require.NoError(t, err)
	return s
}

func TestLoginSeedUsers(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	for _, u := range DefaultUsers() {
		t.Run(u.Username, func(t *testing.T) {
			before := time.Now()
			res, err := s.Login(ctx, u.Username, "password")
			require.NoError(t, err)

			assert.NotEmpty(t, res.Token)
			assert.Equal(t, u.Id, res.User.Id)
			assert.Equal(t, u.Username, res.User.Username)
			assert.Empty(t, res.User.PasswordHash)

			claims, err := s.Verify(ctx, res.Token)
			require.NoError(t, err)
			assert.Equal(t, u.Username, claims.Username)
			assert.Equal(t, u.Id, claims.UserId)
			assert.NotEmpty(t, claims.TokenId)
			assert.WithinDuration(t, before.Add(24*time.Hour), claims.ExpiresAt, 5*time.Second)
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Login(ctx, "admin", "wrongpassword")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = s.Login(ctx, "nobody", "password")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestLoginMissingFields(t *testing.T) {
	// Any comparison against "broken" fails with ErrInvalidCredentials.
	s, err := NewAuthService(testSecret, time.Hour, []models.User{{Id: 1, Username: "admin", PasswordHash: "broken"}}, nil, logging.Discard())
	require.NoError(t, err)

	cases := []struct{ username, password string }{
		{"admin", ""},
		{"", "password"},
		{"", ""},
	}
	for _, c := range cases {
		_, err := s.Login(context.Background(), c.username, c.password)
		assert.ErrorIs(t, err, appErrors.ErrMissingFields)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	issued := time.Now()
	s.now = func() time.Time { return issued }
	res, err := s.Login(ctx, "admin", "password")
	require.NoError(t, err)

	s.now = func() time.Time { return issued.Add(25 * time.Hour) }
	_, err = s.Verify(ctx, res.Token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
	assert.ErrorIs(t, err, appErrors.ErrExpiredToken)
}

func TestVerifyRejectsForeignAndMalformedTokens(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	other, err := NewAuthService("another-secret", time.Hour, DefaultUsers(), nil, logging.Discard())
	require.NoError(t, err)
	res, err := other.Login(ctx, "admin", "password")
	require.NoError(t, err)

	_, err = s.Verify(ctx, res.Token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	_, err = s.Verify(ctx, "invalidtoken")
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":       1,
		"username": "admin",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Verify(ctx, noneToken)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	_, err = s.Verify(ctx, "")
	assert.ErrorIs(t, err, appErrors.ErrMissingToken)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	res, err := s.Login(ctx, "user", "password")
	require.NoError(t, err)
	claims, err := s.Verify(ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, claims))

	_, err = s.Verify(ctx, res.Token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
	assert.ErrorIs(t, err, appErrors.ErrRevokedToken)

	fresh, err := s.Login(ctx, "user", "password")
	require.NoError(t, err)
	_, err = s.Verify(ctx, fresh.Token)
	assert.NoError(t, err)
}

func TestNewAuthServiceValidation(t *testing.T) {
	_, err := NewAuthService("", time.Hour, DefaultUsers(), nil, logging.Discard())
	assert.Error(t, err)

	_, err = NewAuthService(testSecret, 0, DefaultUsers(), nil, logging.Discard())
	assert.Error(t, err)

	dup := append(DefaultUsers(), models.User{Id: 3, Username: "admin"})
	_, err = NewAuthService(testSecret, time.Hour, dup, nil, logging.Discard())
	assert.Error(t, err)
}
