package dto

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/VadymBoyko/PW-HW14/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type RequestEmail struct {
	Email string `json:"email"`
}

type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar"`
	Confirmed bool   `json:"confirmed"`
}

// NewUserResponse strips credential fields from a user record.
func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Confirmed: u.Confirmed,
	}
}

// NewTokenResponse wraps a token pair in the wire shape.
func NewTokenResponse(access, refresh string) TokenResponse {
	return TokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}
}

// Validate checks registration field constraints before any store call.
func (r RegisterRequest) Validate() error {
	username := strings.TrimSpace(r.Username)
	if n := utf8.RuneCountInString(username); n < 4 || n > 50 {
		return errors.New("username must be 4-50 characters")
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if n := len(r.Password); n < 6 || n > 20 {
		return errors.New("password must be 6-20 characters")
	}
	return nil
}

// Validate checks that both login fields are present.
func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

// Validate checks the email shape for confirmation re-requests.
func (r RequestEmail) Validate() error {
	return validateEmail(r.Email)
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return errors.New("invalid email address")
	}
	return nil
}
