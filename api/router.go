// Package api exposes the HTTP surface: account endpoints, grant
// application CRUD, and the websocket upgrade for the support chat.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"grant-desk/auth"
	"grant-desk/observability"
	"grant-desk/services"
)

type Server struct {
	log          *slog.Logger
	authService  services.IAuthService
	applications services.IApplicationService
	tokens       *auth.TokenService
	chat         http.Handler
	stats        *observability.RelayStats
}

func NewServer(log *slog.Logger, authService services.IAuthService,
	applications services.IApplicationService, tokens *auth.TokenService,
	chat http.Handler, stats *observability.RelayStats) *Server {
	return &Server{
		log:          log,
		authService:  authService,
		applications: applications,
		tokens:       tokens,
		chat:         chat,
		stats:        stats,
	}
}

// Router assembles the route tree. The chat endpoint is outside the
// token middleware: websocket clients authenticate in-band with an auth
// frame, not with a header.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/register", s.handleRegister)
	r.Post("/api/login", s.handleLogin)
	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(s.tokens))

		r.Post("/api/applications", s.handleSubmitApplication)
		r.Get("/api/applications", s.handleListApplications)
		r.Get("/api/applications/{id}", s.handleGetApplication)
		r.Patch("/api/applications/{id}", s.handleReviewApplication)
		r.Get("/api/stats", s.handleStats)
	})

	r.Get("/ws", s.chat.ServeHTTP)
	return r
}
