// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported OTEL_EXPORTER values.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
)

const minHashSaltLength = 32

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL         string
	StoreURL            string
	StoreTimeout        time.Duration
	HTTPAddr            string
	PublicURL           string
	ReceiptsDir         string
	TelegramBotToken    string
	AllowedEmailDomains []string
	GeminiAPIKey        string
	LogLevel            string
	LogFormat           string
	OTelExporter        string
	OTelEndpoint        string
	ServiceName         string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StoreURL:         strings.TrimRight(strings.TrimSpace(os.Getenv("STORE_URL")), "/"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		ReceiptsDir:      getEnv("RECEIPTS_DIR", "./data/receipts"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		OTelExporter:     strings.ToLower(getEnv("OTEL_EXPORTER", ExporterNone)),
		OTelEndpoint:     os.Getenv("OTEL_ENDPOINT"),
		ServiceName:      getEnv("OTEL_SERVICE_NAME", "billed"),
	}

	cfg.PublicURL = strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost"+cfg.HTTPAddr), "/")

	cfg.StoreTimeout = 10 * time.Second
	if timeoutStr := os.Getenv("STORE_TIMEOUT"); timeoutStr != "" {
		if d, err := time.ParseDuration(timeoutStr); err == nil && d > 0 {
			cfg.StoreTimeout = d
		}
	}

	domains := os.Getenv("ALLOWED_EMAIL_DOMAINS")
	if domains != "" {
		for domain := range strings.SplitSeq(domains, ",") {
			domain = strings.TrimSpace(domain)
			if domain == "" {
				continue
			}
			// Remove @ prefix if present
			domain = strings.TrimPrefix(domain, "@")
			cfg.AllowedEmailDomains = append(cfg.AllowedEmailDomains, strings.ToLower(domain))
		}
	}

	// Validate required configuration.
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.DatabaseURL == "" && c.StoreURL == "" {
		errs = append(errs, "DATABASE_URL or STORE_URL is required")
	}

	if c.DatabaseURL == "" && c.TelegramBotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required when DATABASE_URL is not set")
	}

	if c.StoreURL != "" && !strings.HasPrefix(c.StoreURL, "http://") && !strings.HasPrefix(c.StoreURL, "https://") {
		errs = append(errs, "STORE_URL must start with http:// or https://")
	}

	if !slices.Contains([]string{ExporterNone, ExporterStdout, ExporterOTLPGRPC, ExporterOTLPHTTP}, c.OTelExporter) {
		errs = append(errs, fmt.Sprintf("OTEL_EXPORTER %q is not supported", c.OTelExporter))
	}

	if len(os.Getenv("LOG_HASH_SALT")) < minHashSaltLength {
		errs = append(errs, fmt.Sprintf("LOG_HASH_SALT must be at least %d characters", minHashSaltLength))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// ServesAPI reports whether the HTTP store API should be started.
func (c *Config) ServesAPI() bool {
	return c.DatabaseURL != ""
}

// BotEnabled reports whether the Telegram front-end should be started.
func (c *Config) BotEnabled() bool {
	return c.TelegramBotToken != ""
}

// IsEmailAllowed checks if an employee email may open a session.
// Any well-formed email is allowed when no domain restriction is configured.
func (c *Config) IsEmailAllowed(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return false
	}
	if len(c.AllowedEmailDomains) == 0 {
		return true
	}

	domain := email[at+1:]
	for _, allowed := range c.AllowedEmailDomains {
		if strings.EqualFold(allowed, domain) {
			return true
		}
	}
	return false
}
