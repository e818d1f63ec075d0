package models

import "time"

type User struct {
	Id           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// TokenClaims is the identity carried by a verified bearer token.
type TokenClaims struct {
	UserId    int64     `json:"id"`
	Username  string    `json:"username"`
	TokenId   string    `json:"jti"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}
