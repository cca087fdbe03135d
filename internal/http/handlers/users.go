package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/VadymBoyko/PW-HW14/internal/cloudimage"
	"github.com/VadymBoyko/PW-HW14/internal/http/respond"
	"github.com/VadymBoyko/PW-HW14/internal/middleware"
	"github.com/VadymBoyko/PW-HW14/internal/models/dto"
	"github.com/VadymBoyko/PW-HW14/internal/storage"
)

const maxAvatarFormBytes = 8 << 20

// AvatarUploader is the single capability the user endpoints need from the
// image host.
type AvatarUploader interface {
	Upload(ctx context.Context, file io.Reader, publicID string) (string, error)
}

// UsersHandler owns the user profile endpoints.
type UsersHandler struct {
	users    storage.UserStore
	uploader AvatarUploader
}

// NewUsersHandler constructs the handler. A nil uploader disables avatar
// uploads.
func NewUsersHandler(users storage.UserStore, uploader AvatarUploader) *UsersHandler {
	return &UsersHandler{users: users, uploader: uploader}
}

// Register attaches user routes to the mux behind the auth guard.
func (h *UsersHandler) Register(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	mux.Handle("PATCH /api/users/avatar", guard(http.HandlerFunc(h.handleUpdateAvatar)))
	mux.Handle("GET /api/users/me", guard(http.HandlerFunc(h.handleMe)))
}

func (h *UsersHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	respond.JSON(w, http.StatusOK, dto.NewUserResponse(user))
}

func (h *UsersHandler) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if h.uploader == nil {
		respond.Error(w, http.StatusServiceUnavailable, "avatar upload is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarFormBytes); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(r.Context(), file, cloudimage.AvatarPublicID(user.Email))
	if err != nil {
		slog.Error("avatar upload", "error", err)
		respond.Error(w, http.StatusBadGateway, "failed to upload avatar")
		return
	}

	updated, err := h.users.UpdateAvatar(r.Context(), user.ID, url)
	if err != nil {
		// The account can vanish between the guard and the update.
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}
		slog.Error("store avatar", "error", err)
		respond.Error(w, http.StatusInternalServerError, "failed to store avatar")
		return
	}
	respond.JSON(w, http.StatusOK, dto.NewUserResponse(updated))
}
