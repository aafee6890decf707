// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer: it connects handlers, middleware and
// routes, and owns the store for the life of the process.
//
// DEPENDENCY INJECTION FLOW:
// main.go creates:
//
//	config.Config, repository.Store, payment.Gateway → passed to Server
//	Server.New() creates: TokenService, PasswordService → services → handlers
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/ombliss-yoga/internal/auth"
	"github.com/sakif/ombliss-yoga/internal/config"
	"github.com/sakif/ombliss-yoga/internal/handler"
	"github.com/sakif/ombliss-yoga/internal/middleware"
	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/payment"
	"github.com/sakif/ombliss-yoga/internal/repository"
	"github.com/sakif/ombliss-yoga/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the store. When the server shuts down it closes the store
// so pending writes are flushed and the Mongo connection pool is released.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  repository.Store
}

// New wires every layer on top of store and gateway.
//
// Each layer only receives what it needs:
//   - services get repository interfaces (not the concrete store)
//   - handlers get services (not repositories)
//   - the admin gate gets the user service as its RoleResolver
func New(cfg *config.Config, store repository.Store, gateway payment.Gateway, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.TokenSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	if gateway == nil {
		gateway = payment.Disabled{}
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	s.setupRoutes(tokens, auth.NewPasswordServiceWithCost(cfg.Auth.BcryptCost), gateway)
	return s, nil
}

// Handler exposes the router, mostly so tests can drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /                               → liveness text
//	GET    /healthz, /metrics              → store ping, Prometheus
//	POST   /jwt, /login                    → token issuer
//	/users, /instructorusers               → accounts, role probes, role assignment
//	/instructors, /approvedinstructors ... → class listings and admin review
//	/classes                               → published classes
//	/selectedclasses                       → enrollments (verified)
//	/create-payment-intent, /payments      → payments (verified)
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: assigns an ID the logger picks up
//  2. RealIP: extracts the client IP from proxy headers
//  3. Logger, Metrics: one log line and one sample per request
//  4. Recoverer: turns a panic into a 500 instead of a crash
//  5. CORS: the frontend lives on another origin
func (s *Server) setupRoutes(tokens *auth.TokenService, passwords *auth.PasswordService, gateway payment.Gateway) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORS.AllowedOrigins,
		AllowedMethods: s.config.CORS.AllowedMethods,
		AllowedHeaders: s.config.CORS.AllowedHeaders,
		MaxAge:         s.config.CORS.MaxAgeSeconds,
	}))

	// === Services ===
	users := service.NewUserService(s.store.Users(), passwords, tokens, s.logger)
	listings := service.NewListingService(s.store.Listings(), s.logger)
	classes := service.NewClassService(s.store.Classes(), s.store.Listings(), s.logger)
	enrollments := service.NewEnrollmentService(s.store.Enrollments(), s.store.Classes(), s.logger)
	payments := service.NewPaymentService(gateway, s.store, s.logger)

	// === Handlers ===
	statusHandler := handler.NewStatusHandler(s.store, s.logger)
	authHandler := handler.NewAuthHandler(tokens, users, s.logger)
	userHandler := handler.NewUserHandler(users, s.logger)
	listingHandler := handler.NewListingHandler(listings, s.logger)
	classHandler := handler.NewClassHandler(classes, s.logger)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollments, s.logger)
	paymentHandler := handler.NewPaymentHandler(payments, s.logger)

	// === Gates ===
	// users doubles as the RoleResolver, so the admin gate reads the stored
	// role on every request.
	verify := auth.RequireAuth(tokens, s.logger)
	admin := auth.RequireAdmin(users, s.logger)

	s.router.Get("/", statusHandler.HandleRoot)
	s.router.Get("/healthz", statusHandler.HandleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Post("/jwt", authHandler.HandleIssueToken)
	s.router.Post("/login", authHandler.HandleLogin)

	// === Public routes ===
	s.router.Group(func(r chi.Router) {
		r.Post("/users", userHandler.HandleCreate)
		r.Get("/instructorusers", userHandler.HandleListInstructors)

		r.Post("/instructors", listingHandler.HandleCreate)
		r.Get("/instructors", listingHandler.HandleList)
		r.Get("/instructors/{id}", listingHandler.HandleGet)
		r.Put("/instructors/{id}", listingHandler.HandleUpdate)

		r.Post("/classes", classHandler.HandleCreate)
		r.Get("/classes", classHandler.HandleList)
		r.Get("/classes/{id}", classHandler.HandleGet)
	})

	// === Role assignment ===
	s.router.Group(func(r chi.Router) {
		if s.config.Auth.ProtectRoleAssignment {
			r.Use(verify, admin)
		}
		r.Patch("/users/admin/{id}", userHandler.HandleSetRole(model.RoleAdmin))
		r.Patch("/users/instructor/{id}", userHandler.HandleSetRole(model.RoleInstructor))
		r.Patch("/users/student/{id}", userHandler.HandleSetRole(model.RoleStudent))
	})

	// === Verified routes ===
	s.router.Group(func(r chi.Router) {
		r.Use(verify)

		r.Get("/users/admin/{email}", userHandler.HandleRoleProbe(model.RoleAdmin))
		r.Get("/users/instructor/{email}", userHandler.HandleRoleProbe(model.RoleInstructor))

		r.Post("/selectedclasses", enrollmentHandler.HandleCreate)
		r.Get("/selectedclasses", enrollmentHandler.HandleList)
		r.Delete("/selectedclasses/{id}", enrollmentHandler.HandleDelete)

		r.Post("/create-payment-intent", paymentHandler.HandleCreateIntent)
		r.Post("/payments", paymentHandler.HandleCreate)
		r.Get("/payments", paymentHandler.HandleList)
	})

	// === Admin routes ===
	s.router.Group(func(r chi.Router) {
		r.Use(verify, admin)

		r.Get("/users", userHandler.HandleList)
		r.Patch("/approvedinstructors/admin/{id}", listingHandler.HandleApprove)
		r.Patch("/deniedinstructors/admin/{id}", listingHandler.HandleDeny)
		r.Patch("/feedback/admin/{id}", listingHandler.HandleFeedback)
	})
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (server.shutdown_timeout_seconds)
//  3. Close the store
func (s *Server) Start() error {
	timeout := time.Duration(s.config.Server.ShutdownTimeoutSeconds) * time.Second
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.store.Close(ctx); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("storage", s.config.Storage.Driver),
			slog.Bool("protect_role_assignment", s.config.Auth.ProtectRoleAssignment),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
