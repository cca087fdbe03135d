package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/VadymBoyko/PW-HW14/internal/auth"
	"github.com/VadymBoyko/PW-HW14/internal/http/respond"
	"github.com/VadymBoyko/PW-HW14/internal/mailer"
	"github.com/VadymBoyko/PW-HW14/internal/middleware"
	"github.com/VadymBoyko/PW-HW14/internal/models"
	"github.com/VadymBoyko/PW-HW14/internal/models/dto"
	"github.com/VadymBoyko/PW-HW14/internal/storage"
)

// AuthHandler owns the signup/login/refresh/confirmation endpoints.
type AuthHandler struct {
	users   storage.UserStore
	tokens  *auth.TokenManager
	mail    mailer.Mailer
	baseURL string
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users storage.UserStore, tokens *auth.TokenManager, mail mailer.Mailer, baseURL string) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, mail: mail, baseURL: strings.TrimRight(baseURL, "/")}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/signup", h.handleSignup)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("GET /api/auth/refresh_token", h.handleRefresh)
	mux.HandleFunc("GET /api/auth/confirmed_email/{token}", h.handleConfirmEmail)
	mux.HandleFunc("POST /api/auth/request_email", h.handleRequestEmail)
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: passwordHash,
	}
	created, err := h.users.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, "account already exists")
			return
		}
		slog.Error("create user", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	go h.sendConfirmation(created)

	respond.JSON(w, http.StatusCreated, map[string]any{
		"user":   dto.NewUserResponse(created),
		"detail": "user successfully created, check your email for confirmation",
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	// The same response covers unknown email and wrong password so that the
	// endpoint cannot be used to enumerate accounts.
	user, err := h.users.FindByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		slog.Error("login: fetch user", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.issueTokens(w, r, user.ID)
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "missing or malformed authorization header")
		return
	}

	userID, err := h.tokens.Parse(token, auth.ScopeRefresh)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, refreshFailureMessage(err))
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		slog.Error("refresh: fetch user", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	// A presented token that no longer matches the stored one has been
	// superseded. Clear the stored token so the session must log in again.
	if user.RefreshToken != token {
		if err := h.users.UpdateRefreshToken(r.Context(), user.ID, ""); err != nil {
			slog.Error("refresh: clear token", "error", err)
		}
		respond.Error(w, http.StatusUnauthorized, "refresh token revoked")
		return
	}

	h.issueTokens(w, r, user.ID)
}

func (h *AuthHandler) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	email, err := h.tokens.ParseEmailToken(r.PathValue("token"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "verification error")
		return
	}

	user, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusBadRequest, "verification error")
			return
		}
		slog.Error("confirm email: fetch user", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	if user.Confirmed {
		respond.JSON(w, http.StatusOK, map[string]string{"message": "your email is already confirmed"})
		return
	}

	if err := h.users.ConfirmEmail(r.Context(), email); err != nil {
		slog.Error("confirm email", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to confirm email")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "email confirmed"})
}

func (h *AuthHandler) handleRequestEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestEmail
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	// The response does not reveal whether the address is registered.
	user, err := h.users.FindByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err == nil && !user.Confirmed {
		go h.sendConfirmation(user)
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Error("request email: fetch user", "error", err)
	}

	respond.JSON(w, http.StatusOK, map[string]string{"message": "check your email for confirmation"})
}

// issueTokens mints a new pair and persists the refresh token, making it the
// single valid one for the user.
func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, userID int64) {
	access, refresh, err := h.tokens.GeneratePair(userID)
	if err != nil {
		slog.Error("generate tokens", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}
	if err := h.users.UpdateRefreshToken(r.Context(), userID, refresh); err != nil {
		slog.Error("store refresh token", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to store refresh token")
		return
	}
	respond.JSON(w, http.StatusOK, dto.NewTokenResponse(access, refresh))
}

// sendConfirmation delivers the confirmation link in the background; delivery
// failures are logged, never surfaced to the client.
func (h *AuthHandler) sendConfirmation(user models.User) {
	token, err := h.tokens.GenerateEmailToken(user.Email)
	if err != nil {
		slog.Error("generate email token", "error", err)
		return
	}
	confirmURL := fmt.Sprintf("%s/api/auth/confirmed_email/%s", h.baseURL, token)
	if err := h.mail.SendConfirmation(context.Background(), user.Email, user.Username, confirmURL); err != nil {
		slog.Error("send confirmation mail", "email", user.Email, "error", err)
	}
}

func refreshFailureMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "refresh token expired"
	case errors.Is(err, auth.ErrWrongTokenScope):
		return "wrong token scope"
	default:
		return "invalid refresh token"
	}
}
