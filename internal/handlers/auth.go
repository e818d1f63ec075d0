package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Novip1906/tasks-http/internal/auth"
	"github.com/Novip1906/tasks-http/internal/contextkeys"
	appErrors "github.com/Novip1906/tasks-http/internal/errors"
	"github.com/Novip1906/tasks-http/internal/models"
	"github.com/Novip1906/tasks-http/pkg/logging"
)

type Authenticator interface {
	Login(ctx context.Context, username, password string) (*auth.LoginResult, error)
	Logout(ctx context.Context, claims *models.TokenClaims) error
}

type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := contextkeys.GetLogger(r.Context())

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Info("bad login body", logging.Err(err))
		writeServiceError(w, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, appErrors.ErrInternal) {
			log.Error("login error", logging.Err(err))
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := contextkeys.GetLogger(r.Context())

	claims, ok := contextkeys.GetTokenClaims(r.Context())
	if !ok {
		log.Error("no token claims in context")
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	if err := h.auth.Logout(r.Context(), claims); err != nil {
		log.Error("logout error", logging.Err(err))
		writeServiceError(w, err)
		return
	}

	log.Info("user logged out")
	w.WriteHeader(http.StatusNoContent)
}
