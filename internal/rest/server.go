// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-smartwallet.
//
// go-smartwallet is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeremyhahn/go-smartwallet/pkg/adapters/auth"
	"github.com/jeremyhahn/go-smartwallet/pkg/adapters/logger"
	"github.com/jeremyhahn/go-smartwallet/pkg/health"
	"github.com/jeremyhahn/go-smartwallet/pkg/metrics"
	"github.com/jeremyhahn/go-smartwallet/pkg/ratelimit"
	"github.com/jeremyhahn/go-smartwallet/pkg/wallet"
	"github.com/jeremyhahn/go-smartwallet/pkg/webauthn"
)

// Server represents the REST API server.
type Server struct {
	server        *http.Server
	handlers      *HandlerContext
	port          int
	tlsConfig     *tls.Config
	authenticator auth.Authenticator
	logger        logger.Logger
	metricsPath   string
	rateLimiter   *ratelimit.Limiter
}

// Config holds the REST server configuration.
type Config struct {
	// Port is the HTTP port to listen on (default: 8443)
	Port int

	// Wallet is the wallet service backing the API
	Wallet *wallet.Service

	// Verifier handles standalone assertion verification requests.
	// Defaults to the wallet's in-process ECDSA verifier if not set.
	Verifier webauthn.Verifier

	// Version is the API version string
	Version string

	// TLSConfig is the TLS configuration for HTTPS (optional)
	TLSConfig *tls.Config

	// Authenticator is the authentication adapter (optional, defaults to NoOp)
	Authenticator auth.Authenticator

	// Logger is the logging adapter (optional, uses stdlib if not provided)
	Logger logger.Logger

	// MetricsPath serves the Prometheus registry when set (e.g. "/metrics")
	MetricsPath string

	// RateLimiter throttles API requests per caller (optional)
	RateLimiter *ratelimit.Limiter

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration
}

// NewServer creates a new REST API server.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if cfg.Wallet == nil {
		return nil, fmt.Errorf("wallet service is required")
	}

	// Set defaults
	if cfg.Port == 0 {
		cfg.Port = 8443
	}
	if cfg.Version == "" {
		cfg.Version = wallet.Version
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	verifier := cfg.Verifier
	if verifier == nil {
		verifier = webauthn.NewECDSAVerifier()
	}

	// Set up authenticator (default to NoOp if not provided)
	authenticator := cfg.Authenticator
	if authenticator == nil {
		authenticator = auth.NewNoOpAuthenticator()
	}

	// Set up logger (default to stdlib if not provided)
	log := cfg.Logger
	if log == nil {
		log = logger.NewSlogAdapter(&logger.SlogConfig{
			Level: logger.LevelInfo,
		})
	}

	// Create handler context
	handlers := NewHandlerContext(cfg.Wallet, verifier, cfg.Version)

	// Create server instance
	server := &Server{
		handlers:      handlers,
		port:          cfg.Port,
		tlsConfig:     cfg.TLSConfig,
		authenticator: authenticator,
		logger:        log,
		metricsPath:   cfg.MetricsPath,
		rateLimiter:   cfg.RateLimiter,
	}

	// Create router with middleware
	router := server.setupRouter()

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		TLSConfig:    cfg.TLSConfig,
	}

	server.server = httpServer

	return server, nil
}

// setupRouter configures the chi router with all routes and middleware.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(s.RecoveryMiddleware())
	r.Use(s.CorrelationMiddleware()) // Add correlation ID before logging
	r.Use(s.LoggingMiddleware())
	r.Use(metrics.HTTPMiddleware)
	r.Use(CORSMiddleware)

	// Health endpoint (no auth required)
	r.Get("/health", s.handlers.HealthHandler)
	r.Head("/health", s.handlers.HealthHandler)

	// Kubernetes-style health probes (no auth required)
	r.Get("/health/live", s.handlers.LivenessHandler)
	r.Get("/health/ready", s.handlers.ReadinessHandler)
	r.Get("/health/startup", s.handlers.StartupHandler)

	// Prometheus exposition (no auth required)
	if s.metricsPath != "" {
		r.Get(s.metricsPath, promhttp.Handler().ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Assertion verification is a pure check with no wallet state,
		// so it needs no caller identity. The remote verifier mode
		// depends on this.
		r.Post("/verify", s.handlers.VerifyHandler)

		// Wallet routes require an authenticated caller
		r.Group(func(r chi.Router) {
			r.Use(s.AuthenticationMiddleware())

			// Throttle after authentication so limits follow the subject
			if s.rateLimiter != nil && s.rateLimiter.IsEnabled() {
				r.Use(ratelimit.Middleware(s.rateLimiter))
			}

			// Signer registration
			r.Post("/signers", s.handlers.RegisterSignerHandler)
			r.Get("/signers/{owner}", s.handlers.GetSignerHandler)

			// Wallet operations
			r.Post("/wallet/deposit", s.handlers.DepositHandler)
			r.Post("/wallet/payment", s.handlers.PaymentHandler)
			r.Get("/wallet/{owner}/balances/{asset}", s.handlers.BalanceHandler)
			r.Get("/wallet/info", s.handlers.WalletInfoHandler)
		})
	})

	return r
}

// Start starts the REST API server.
func (s *Server) Start() error {
	if s.tlsConfig != nil {
		s.logger.Info("Starting HTTPS server",
			logger.Int("port", s.port),
			logger.String("auth", s.authenticator.Name()))

		if err := s.server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTPS server: %w", err)
		}
	} else {
		s.logger.Info("Starting HTTP server",
			logger.Int("port", s.port),
			logger.String("auth", s.authenticator.Name()))

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}

	return nil
}

// Stop gracefully stops the REST API server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shutdown server", logger.Error(err))
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server stopped")
	return nil
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Handler returns the configured router. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// SetHealthChecker sets the health checker for the server.
func (s *Server) SetHealthChecker(checker *health.Checker) {
	s.handlers.SetHealthChecker(checker)
}
