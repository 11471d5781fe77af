// Copyright (c) 2025-2026 Avenir Labs
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinSessionSecretLength is the minimum required length for the session
// secret. 32 bytes matches an AES-256 key.
const MinSessionSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"AVENIR_DB_PATH" envDefault:"./data/avenir.db"`
	SessionSecret string `env:"AVENIR_SESSION_SECRET,required"`
	ServerHost    string `env:"AVENIR_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"AVENIR_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"AVENIR_ENV" envDefault:"development"`
	LogLevel      string `env:"AVENIR_LOG_LEVEL" envDefault:"info"`

	// Static client app and uploaded media
	StaticDir  string `env:"AVENIR_STATIC_DIR" envDefault:"./web/dist"`
	UploadsDir string `env:"AVENIR_UPLOADS_DIR" envDefault:"./uploads"`

	// Cache configuration
	RedisURL     string `env:"AVENIR_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"AVENIR_CACHE_PREFIX" envDefault:"avenir:"` // Redis key prefix
	CacheTTL     int    `env:"AVENIR_CACHE_TTL" envDefault:"300"`        // Default cache TTL in seconds
	CacheMaxSize int    `env:"AVENIR_CACHE_MAX_SIZE" envDefault:"1000"`  // Max memory cache entries

	// Analytics
	GeoIPDBPath            string `env:"AVENIR_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file
	AnalyticsRetentionDays int    `env:"AVENIR_ANALYTICS_RETENTION_DAYS" envDefault:"365"`

	// AI drafting assistant
	OpenAIAPIKey string `env:"AVENIR_OPENAI_API_KEY"`
	OpenAIModel  string `env:"AVENIR_OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// Seeding configuration
	DoSeed bool `env:"AVENIR_DO_SEED" envDefault:"true"` // Create the default admin on first start
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if a GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// AssistEnabled returns true if the AI drafting assistant is configured.
func (c Config) AssistEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("AVENIR_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("AVENIR_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("AVENIR_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
