package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	Env        string `env:"ENV" envDefault:"development"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigin string `env:"CORS_ORIGIN"`

	DBDriver string `env:"DB_DRIVER" envDefault:"postgres"`
	DBURL    string `env:"DB_URL"`

	JWTSecret    string `env:"JWT_SECRET"`
	OIDCIssuer   string `env:"OIDC_ISSUER"`
	OIDCClientID string `env:"OIDC_CLIENT_ID"`

	S3 S3Config `envPrefix:"S3_"`

	MaxUploadBytes int64   `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"`
	FeedLimit      int     `env:"FEED_LIMIT" envDefault:"50"`
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

type S3Config struct {
	Bucket          string `env:"BUCKET"`
	Region          string `env:"REGION" envDefault:"us-east-1"`
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	// PublicURL is the base public object URLs are built from. Empty means
	// the virtual-hosted bucket URL.
	PublicURL string `env:"PUBLIC_URL"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var problems []error
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		problems = append(problems, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DBDriver))
	}
	if c.DBURL == "" {
		problems = append(problems, errors.New("DB_URL is required"))
	}
	if c.JWTSecret == "" && c.OIDCIssuer == "" {
		problems = append(problems, errors.New("JWT_SECRET is required unless OIDC_ISSUER is set"))
	}
	if c.OIDCIssuer != "" && c.OIDCClientID == "" {
		problems = append(problems, errors.New("OIDC_CLIENT_ID is required with OIDC_ISSUER"))
	}
	if c.S3.Bucket == "" {
		problems = append(problems, errors.New("S3_BUCKET is required"))
	}
	if c.MaxUploadBytes <= 0 {
		problems = append(problems, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.FeedLimit <= 0 {
		problems = append(problems, errors.New("FEED_LIMIT must be positive"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		problems = append(problems, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	return errors.Join(problems...)
}

func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}
