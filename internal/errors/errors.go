package errors

import "errors"

var (
	ErrMissingFields      = errors.New("username and password required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("access token required")
	ErrInvalidToken       = errors.New("token invalid")
	ErrExpiredToken       = errors.New("token expired")
	ErrRevokedToken       = errors.New("token revoked")
	ErrEmptyTitle         = errors.New("title is required")
	ErrEmptyQuery         = errors.New("query is required")
	ErrInternal           = errors.New("internal error")
)
