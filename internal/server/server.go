package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/VadymBoyko/PW-HW14/internal/auth"
	"github.com/VadymBoyko/PW-HW14/internal/cloudimage"
	"github.com/VadymBoyko/PW-HW14/internal/config"
	"github.com/VadymBoyko/PW-HW14/internal/http/handlers"
	"github.com/VadymBoyko/PW-HW14/internal/mailer"
	"github.com/VadymBoyko/PW-HW14/internal/middleware"
	"github.com/VadymBoyko/PW-HW14/internal/storage/postgres"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store *postgres.Store, logger *slog.Logger) *Server {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL, cfg.EmailTokenTTL)

	var mail mailer.Mailer = mailer.NoopMailer{}
	if smtp := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom); smtp.Enabled() {
		mail = smtp
	}

	var uploader handlers.AvatarUploader
	if images := cloudimage.New(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret); images.Enabled() {
		uploader = images
	}

	guard := func(next http.Handler) http.Handler {
		return middleware.Authenticate(store.Users, tokens, next)
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), store).Register(mux)
	handlers.NewAuthHandler(store.Users, tokens, mail, cfg.BaseURL).Register(mux)
	handlers.NewContactsHandler(store.Contacts).Register(mux, guard)
	handlers.NewUsersHandler(store.Users, uploader).Register(mux, guard)

	handler := middleware.RequestID(middleware.CORS(cfg.CORSOrigins, middleware.Logging(logger, mux)))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
