// Package config loads the API configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Redis    RedisConfig
	Search   SearchConfig
	Import   ImportConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Environment         string
	LogLevel            string
	SeedDefaultTaxonomy bool
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string
	CORSOrigin      string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds the relational store settings.
type DatabaseConfig struct {
	Driver          string // "mysql" or "sqlite"
	DSN             string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig holds the admin gate settings.
type AuthConfig struct {
	JWTSecret []byte
	TokenTTL  time.Duration
}

// RedisConfig holds the cache invalidation publisher settings.
// An empty Addr disables publishing.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// SearchConfig holds public read path limits.
type SearchConfig struct {
	RateRPS   float64
	RateBurst int
}

// ImportConfig holds category importer settings.
type ImportConfig struct {
	LogOrphans bool
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Load reads envFile (if it exists) and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
		}
	}

	p := &parser{}
	cfg := &Config{
		App: AppConfig{
			Environment:         getEnv("APP_ENV", "development"),
			LogLevel:            getEnv("LOG_LEVEL", "info"),
			SeedDefaultTaxonomy: p.bool("SEED_DEFAULT_TAXONOMY", false),
		},
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			CORSOrigin:      getEnv("CORS_ORIGIN", "http://localhost:3000"),
			ShutdownTimeout: p.duration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", "mysql")),
			DSN:             os.Getenv("DB_DSN_PRIMARY"),
			SQLitePath:      getEnv("SQLITE_PATH", "ocaso.db"),
			MaxOpenConns:    p.int("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    p.int("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: p.duration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: []byte(os.Getenv("JWT_SECRET")),
			TokenTTL:  p.duration("JWT_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       p.int("REDIS_DB", 0),
			Channel:  getEnv("REDIS_CHANNEL", "ocaso:invalidate"),
		},
		Search: SearchConfig{
			RateRPS:   p.float("SEARCH_RATE_RPS", 10),
			RateBurst: p.int("SEARCH_RATE_BURST", 20),
		},
		Import: ImportConfig{
			LogOrphans: p.bool("IMPORT_LOG_ORPHANS", true),
		},
	}

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql":
		if c.Database.DSN == "" {
			return errors.New("DB_DSN_PRIMARY is required when DB_DRIVER=mysql")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return errors.New("SQLITE_PATH must not be empty when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (want mysql or sqlite)", c.Database.Driver)
	}

	if len(c.Auth.JWTSecret) == 0 {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.Auth.JWTSecret = []byte("ocaso-development-secret")
	}

	if c.Search.RateRPS <= 0 || c.Search.RateBurst <= 0 {
		return errors.New("SEARCH_RATE_RPS and SEARCH_RATE_BURST must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parser collects every malformed variable so Load reports them together.
type parser struct {
	errs []error
}

func (p *parser) int(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return fallback
	}
	return v
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid number %q", key, raw))
		return fallback
	}
	return v
}

func (p *parser) bool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid boolean %q", key, raw))
		return fallback
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return fallback
	}
	return v
}
