package auth

import "errors"

// Token verification failures. Callers should match with errors.Is.
var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token expired")
	ErrWrongTokenScope = errors.New("wrong token scope")
	ErrRevokedToken    = errors.New("refresh token revoked")
)
