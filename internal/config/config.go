// Package config loads service configuration from the environment and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-jwt-secret"

// Config holds every setting the binaries read.
type Config struct {
	AppEnv             string        `mapstructure:"APP_ENV"`
	Port               string        `mapstructure:"PORT"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	JWTTTL             time.Duration `mapstructure:"JWT_TTL"`
	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogMode            string        `mapstructure:"LOG_MODE"`

	DndAPIURL     string        `mapstructure:"DND_API_URL"`
	DndAPITimeout time.Duration `mapstructure:"DND_API_TIMEOUT"`
	ImportLimit   int           `mapstructure:"IMPORT_LIMIT"`

	SimilarLimit     int    `mapstructure:"SIMILAR_LIMIT"`
	SimilarScanLimit int    `mapstructure:"SIMILAR_SCAN_LIMIT"`
	LabelsFile       string `mapstructure:"LABELS_FILE"`

	TracingEnabled  bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string `mapstructure:"OTLP_ENDPOINT"`

	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "dndinfo.db")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_MODE", "dev")

	v.SetDefault("DND_API_URL", "https://www.dnd5eapi.co/api/2014")
	v.SetDefault("DND_API_TIMEOUT", "15s")
	v.SetDefault("IMPORT_LIMIT", 20)

	v.SetDefault("SIMILAR_LIMIT", 5)
	v.SetDefault("SIMILAR_SCAN_LIMIT", 500)
	v.SetDefault("LABELS_FILE", "")

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_EXPORTER", "stdout")
	v.SetDefault("OTLP_ENDPOINT", "localhost:4318")

	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
}

// Load reads .env (if present), then config.yml (if present), then the
// environment. Environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// IsProd reports whether the service runs with production safeguards.
func (c *Config) IsProd() bool {
	switch c.AppEnv {
	case "prod", "production", "staging":
		return true
	}
	return false
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS into a clean list.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT is required")
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be > 0")
	}
	if c.SimilarLimit <= 0 {
		return errors.New("SIMILAR_LIMIT must be > 0")
	}
	if c.SimilarScanLimit < c.SimilarLimit {
		return errors.New("SIMILAR_SCAN_LIMIT must be >= SIMILAR_LIMIT")
	}
	if c.ImportLimit < 0 {
		return errors.New("IMPORT_LIMIT must be >= 0")
	}
	if c.DndAPITimeout <= 0 {
		return errors.New("DND_API_TIMEOUT must be > 0")
	}

	if c.IsProd() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if strings.Contains(c.CORSAllowedOrigins, "*") {
			return errors.New("CORS_ALLOWED_ORIGINS must not contain '*' in production")
		}
	}
	return nil
}
