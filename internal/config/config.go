package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is used when JWT_SECRET is not set. It is public knowledge,
// so the server logs a warning whenever it is in effect.
const DefaultJWTSecret = "your_super_secret_jwt_key_123"

// Config contains server configuration parameters.
type Config struct {
	LogLevel int      `env:"LOG_LEVEL" envDefault:"0"`
	HTTP     HTTP
	GRPC     GRPC     `envPrefix:"GRPC_"`
	Database Database `envPrefix:"DATABASE_"`
	JWT      JWT      `envPrefix:"JWT_"`
	Hash     Hash     `envPrefix:"HASH_"`
	CORS     CORS     `envPrefix:"CORS_"`
}

// HTTP contains HTTP server parameters. PORT is kept unprefixed, as hosting platforms set it.
type HTTP struct {
	Port               string `env:"PORT" envDefault:"5000"`
	EnableHTTPS        bool   `env:"HTTP_ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string `env:"HTTP_CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string `env:"HTTP_PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
}

// GRPC contains parameters of the gRPC health endpoint.
type GRPC struct {
	Enabled        bool          `env:"ENABLED" envDefault:"true"`
	Port           string        `env:"PORT" envDefault:"50051"`
	HealthInterval time.Duration `env:"HEALTH_INTERVAL" envDefault:"15s"`
}

// Database contains durable store parameters. An empty URL keeps the
// process on the in-memory store for its whole lifetime.
type Database struct {
	URL             string `env:"URL"`
	MaxConns        int32  `env:"MAX_CONNS" envDefault:"10"`
	ConnectAttempts uint64 `env:"CONNECT_ATTEMPTS" envDefault:"3"`
}

// JWT contains session token parameters.
type JWT struct {
	Secret string `env:"SECRET" envDefault:"your_super_secret_jwt_key_123"`
}

// Hash contains password hashing parameters.
type Hash struct {
	Cost    int `env:"COST" envDefault:"10"`
	Workers int `env:"WORKERS" envDefault:"0"`
}

// CORS contains cross-origin parameters. No origins means every origin is echoed back.
type CORS struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// NewConfig loads configuration from a .env file (if any) and environment variables.
func NewConfig() (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// UsesDefaultSecret reports whether tokens are signed with DefaultJWTSecret.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWT.Secret == DefaultJWTSecret
}

// DurableStoreConfigured reports whether a database URL was provided.
func (c *Config) DurableStoreConfigured() bool {
	return c.Database.URL != ""
}

func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}
