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

// Package config loads the smartwallet server configuration from a YAML
// file with SMARTWALLET_* environment variable overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// SMARTWALLET_SERVER_PORT overrides server.port.
const EnvPrefix = "SMARTWALLET"

// Config represents the complete server configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	TLS     TLSConfig     `mapstructure:"tls" yaml:"tls"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Wallet  WalletConfig  `mapstructure:"wallet" yaml:"wallet"`

	RateLimit RateLimitConfig `mapstructure:"ratelimit" yaml:"ratelimit"`
}

// ServerConfig contains server-level settings
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TLSConfig controls TLS/SSL settings
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	CertFile string `mapstructure:"cert_file" yaml:"cert_file"`
	KeyFile  string `mapstructure:"key_file" yaml:"key_file"`
	CAFile   string `mapstructure:"ca_file" yaml:"ca_file"`

	// Client certificate verification (mTLS)
	ClientAuth string `mapstructure:"client_auth" yaml:"client_auth"` // none, request, require, verify, require_and_verify

	// Minimum TLS version: TLS1.2 or TLS1.3
	MinVersion string `mapstructure:"min_version" yaml:"min_version"`
}

// AuthConfig controls caller authentication
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Type    string `mapstructure:"type" yaml:"type"` // noop, jwt

	// JWT authentication
	JWT *JWTConfig `mapstructure:"jwt" yaml:"jwt,omitempty"`
}

// JWTConfig controls JWT authentication
type JWTConfig struct {
	PublicKeyFile string `mapstructure:"public_key_file" yaml:"public_key_file"`
	Issuer        string `mapstructure:"issuer" yaml:"issuer"`
	Audience      string `mapstructure:"audience" yaml:"audience"`
}

// MetricsConfig controls the Prometheus metrics endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// StorageConfig controls the wallet's persistence backend
type StorageConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"` // memory
}

// WalletConfig controls wallet behavior
type WalletConfig struct {
	// CustodyAccount is the token account that holds deposited funds.
	CustodyAccount string `mapstructure:"custody_account" yaml:"custody_account"`

	// Verifier selects where assertion verification runs.
	Verifier VerifierConfig `mapstructure:"verifier" yaml:"verifier"`
}

// VerifierConfig selects the assertion verifier implementation
type VerifierConfig struct {
	// Mode is inprocess (default) or remote.
	Mode string `mapstructure:"mode" yaml:"mode"`

	// URL is the remote verifier base URL, required when Mode is remote.
	URL string `mapstructure:"url" yaml:"url"`
}

// RateLimitConfig controls per-caller API request throttling
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled" yaml:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	Burst             int  `mapstructure:"burst" yaml:"burst"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8443},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Auth:    AuthConfig{Enabled: false, Type: "noop"},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
		Storage: StorageConfig{Backend: "memory"},
		Wallet: WalletConfig{
			Verifier: VerifierConfig{Mode: "inprocess"},
		},
		RateLimit: RateLimitConfig{Enabled: false, RequestsPerMinute: 600},
	}
}

// Load reads configuration from a YAML file (optional) and applies
// environment variable overrides. An empty path loads defaults plus
// environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults := Default()
	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("auth.enabled", defaults.Auth.Enabled)
	v.SetDefault("auth.type", defaults.Auth.Type)
	v.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	v.SetDefault("metrics.path", defaults.Metrics.Path)
	v.SetDefault("storage.backend", defaults.Storage.Backend)
	v.SetDefault("wallet.custody_account", defaults.Wallet.CustodyAccount)
	v.SetDefault("wallet.verifier.mode", defaults.Wallet.Verifier.Mode)
	v.SetDefault("ratelimit.enabled", defaults.RateLimit.Enabled)
	v.SetDefault("ratelimit.requests_per_minute", defaults.RateLimit.RequestsPerMinute)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	if c.TLS.Enabled {
		if c.TLS.CertFile == "" {
			return fmt.Errorf("TLS cert_file is required when TLS is enabled")
		}
		if c.TLS.KeyFile == "" {
			return fmt.Errorf("TLS key_file is required when TLS is enabled")
		}
	}

	if c.Auth.Enabled {
		switch c.Auth.Type {
		case "noop", "":
		case "jwt":
			if c.Auth.JWT == nil || c.Auth.JWT.PublicKeyFile == "" {
				return fmt.Errorf("auth.jwt.public_key_file is required for jwt auth")
			}
		default:
			return fmt.Errorf("unknown auth type: %s", c.Auth.Type)
		}
	}

	switch c.Storage.Backend {
	case "memory":
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("ratelimit.requests_per_minute must be positive")
	}

	switch c.Wallet.Verifier.Mode {
	case "inprocess", "":
	case "remote":
		if c.Wallet.Verifier.URL == "" {
			return fmt.Errorf("wallet.verifier.url is required for remote verifier")
		}
	default:
		return fmt.Errorf("unknown verifier mode: %s", c.Wallet.Verifier.Mode)
	}

	return nil
}
