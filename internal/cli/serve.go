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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-smartwallet/internal/config"
	"github.com/jeremyhahn/go-smartwallet/internal/rest"
	"github.com/jeremyhahn/go-smartwallet/pkg/adapters/logger"
	"github.com/jeremyhahn/go-smartwallet/pkg/client"
	"github.com/jeremyhahn/go-smartwallet/pkg/health"
	"github.com/jeremyhahn/go-smartwallet/pkg/metrics"
	"github.com/jeremyhahn/go-smartwallet/pkg/ratelimit"
	"github.com/jeremyhahn/go-smartwallet/pkg/storage"
	"github.com/jeremyhahn/go-smartwallet/pkg/token"
	"github.com/jeremyhahn/go-smartwallet/pkg/wallet"
	"github.com/jeremyhahn/go-smartwallet/pkg/webauthn"
)

var serveConfigFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the wallet REST API server",
	Long: `Starts the wallet REST API server. Configuration is read from the
--config file when given, otherwise from built-in defaults, with
SMARTWALLET_* environment variables overriding either.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(serveConfigFile)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigFile, "config", "",
		"config file (also: SMARTWALLET_CONFIG)")
}

func runServe(configPath string) error {
	if configPath == "" {
		configPath = os.Getenv("SMARTWALLET_CONFIG")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := newLogger(cfg.Logging)

	if !cfg.Metrics.Enabled {
		metrics.Disable()
	}

	backend := storage.NewMemoryBackend()
	defer backend.Close()

	verifier, verifierClient, err := newVerifier(cfg.Wallet.Verifier)
	if err != nil {
		return err
	}
	if verifierClient != nil {
		defer verifierClient.Close()
	}

	walletService, err := wallet.NewService(wallet.ServiceParams{
		Credentials:    wallet.NewCredentialStore(backend),
		Storage:        backend,
		Verifier:       verifier,
		Tokens:         token.NewMemoryService(),
		CustodyAccount: cfg.Wallet.CustodyAccount,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("failed to create wallet service: %w", err)
	}

	authenticator, err := cfg.Auth.CreateAuthenticator()
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}

	tlsConfig, err := cfg.TLS.LoadTLSConfig()
	if err != nil {
		return fmt.Errorf("failed to load TLS configuration: %w", err)
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	limiter := ratelimit.New(&ratelimit.Config{
		Enabled:           cfg.RateLimit.Enabled,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
	})
	defer limiter.Stop()

	server, err := rest.NewServer(&rest.Config{
		Port:          cfg.Server.Port,
		Wallet:        walletService,
		Version:       wallet.Version,
		TLSConfig:     tlsConfig,
		Authenticator: authenticator,
		Logger:        log,
		MetricsPath:   metricsPath,
		RateLimiter:   limiter,
	})
	if err != nil {
		return fmt.Errorf("failed to create REST server: %w", err)
	}

	checker := health.NewChecker()
	checker.RegisterCheck("storage", health.StorageCheck(backend))
	server.SetHealthChecker(checker)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()
	checker.MarkStarted()

	log.Info("Wallet server started",
		logger.Int("port", server.Port()),
		logger.String("verifier", cfg.Wallet.Verifier.Mode),
		logger.String("storage", cfg.Storage.Backend))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-shutdownCh:
		log.Info("Shutdown signal received", logger.String("signal", sig.String()))
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// newLogger builds the process logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) logger.Logger {
	level := logger.ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: levelToSlog(level)}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return logger.NewSlogAdapter(&logger.SlogConfig{
		Level:   level,
		Handler: handler,
	})
}

func levelToSlog(level logger.Level) slog.Level {
	switch level {
	case logger.LevelDebug:
		return slog.LevelDebug
	case logger.LevelWarn:
		return slog.LevelWarn
	case logger.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newVerifier builds the assertion verifier. In remote mode the returned
// client must be closed by the caller when the server shuts down.
func newVerifier(cfg config.VerifierConfig) (webauthn.Verifier, client.Client, error) {
	switch cfg.Mode {
	case "remote":
		verifierClient, err := client.NewFromURL(cfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create verifier client: %w", err)
		}
		if err := verifierClient.Connect(context.Background()); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to remote verifier: %w", err)
		}
		return client.NewRemoteVerifier(verifierClient), verifierClient, nil
	default:
		return webauthn.NewECDSAVerifier(), nil, nil
	}
}
