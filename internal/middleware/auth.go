package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/VadymBoyko/PW-HW14/internal/auth"
	"github.com/VadymBoyko/PW-HW14/internal/http/respond"
	"github.com/VadymBoyko/PW-HW14/internal/models"
	"github.com/VadymBoyko/PW-HW14/internal/storage"
)

type userKey struct{}

// Authenticate resolves the calling identity from the bearer token on every
// protected request. The access token is verified and the user loaded fresh
// from the store; nothing is cached between requests.
func Authenticate(store storage.UserStore, tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		userID, err := tokens.Parse(token, auth.ScopeAccess)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, authFailureMessage(err))
			return
		}

		user, err := store.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				respond.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}
			respond.Error(w, http.StatusInternalServerError, "failed to resolve user")
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the token from an "Authorization: Bearer x" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// UserFromContext returns the authenticated user placed by Authenticate.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey{}).(models.User)
	return user, ok
}

// WithUser is a test seam for handlers behind Authenticate.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

func authFailureMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "token expired"
	case errors.Is(err, auth.ErrWrongTokenScope):
		return "wrong token scope"
	default:
		return "invalid token"
	}
}
