package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/profiles-service/internal/transport/http/handlers"
	"github.com/pribylovaa/profiles-service/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; пустой — роуты на корне.
}

// NewRouter собирает http.Handler с chi, мидлварами и маршрутами.
func NewRouter(h *handlers.Handlers, authn middleware.UserAuthenticator, opts Options) http.Handler {
	root := chi.NewRouter()

	// Внешний -> внутренний.
	root.Use(
		middleware.Recover(),
		middleware.RequestID(), // до логирования
		middleware.Logging(opts.Logger),
		middleware.Metrics(),
		middleware.Timeout(opts.Timeout),
	)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, authn)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, authn)
	return root
}

// registerRoutes — единая точка регистрации REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, authn middleware.UserAuthenticator) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(authn))

		r.Post("/users/{user_id}/profile/", h.CreateProfile)
		r.Post("/users/{user_id}/profile", h.CreateProfile)
	})
}
