// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

// Package api provides the HTTP API server and handlers for Postline.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/postline/postline/internal/access"
	"github.com/postline/postline/internal/auth"
	"github.com/postline/postline/internal/content"
	"github.com/postline/postline/internal/observability"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	auth       *auth.Service
	users      *auth.UserService
	issuer     auth.TokenIssuer
	posts      *content.PostService
	categories *content.CategoryService
	tags       *content.TagService
	policy     *access.Policy
	metrics    *observability.Metrics
	router     *chi.Mux
	validate   *validator.Validate
	logger     *slog.Logger
	corsOrigin []string
}

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithMetrics wires request metrics into the middleware stack.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) { s.metrics = m }
}

// WithCORSOrigins sets the allowed CORS origins. Empty means same-origin
// only.
func WithCORSOrigins(origins []string) ServerOption {
	return func(s *Server) { s.corsOrigin = origins }
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	authSvc *auth.Service,
	users *auth.UserService,
	issuer auth.TokenIssuer,
	posts *content.PostService,
	categories *content.CategoryService,
	tags *content.TagService,
	policy *access.Policy,
	logger *slog.Logger,
	opts ...ServerOption,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		auth:       authSvc,
		users:      users,
		issuer:     issuer,
		posts:      posts,
		categories: categories,
		tags:       tags,
		policy:     policy,
		router:     chi.NewRouter(),
		validate:   validator.New(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	if len(s.corsOrigin) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigin,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if s.metrics != nil {
		s.router.Use(s.recordMetrics)
	}
	s.router.Use(s.withIdentity)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/signin", s.handleSignin)
			r.Post("/logout", s.handleLogout)
			r.Post("/refresh", s.handleRefresh)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", s.handleListPosts)
			r.Get("/{id}", s.handleGetPost)
			r.Post("/", s.handleCreatePost)
			r.Patch("/{id}", s.handleUpdatePost)
			r.Delete("/{id}", s.handleDeletePost)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Get("/{id}", s.handleGetCategory)
			r.Post("/", s.handleCreateCategory)
			r.Patch("/{id}", s.handleUpdateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.handleListTags)
			r.Get("/{id}", s.handleGetTag)
			r.Post("/", s.handleCreateTag)
			r.Patch("/{id}", s.handleUpdateTag)
			r.Delete("/{id}", s.handleDeleteTag)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Get("/{id}", s.handleGetUser)
			r.Patch("/{id}", s.handleUpdateUser)
			r.Delete("/{id}", s.handleDeleteUser)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
