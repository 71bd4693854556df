package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/retailhub/backoffice/internal/core/domain"
)

const minSecretLength = 16

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Audit     AuditConfig
	Bootstrap BootstrapConfig

	// CORSOrigins is a comma separated allowlist; "*" allows any origin.
	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET, required"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,            default=12h"`
	DefaultRole   string        `env:"DEFAULT_ROLE,         default=user"`
	MaxFailures   int64         `env:"LOGIN_MAX_FAILURES,   default=5"`
	FailureWindow time.Duration `env:"LOGIN_FAILURE_WINDOW, default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=retail_backoffice"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type AuditConfig struct {
	Workers   int `env:"AUDIT_WORKERS,    default=4"`
	QueueSize int `env:"AUDIT_QUEUE_SIZE, default=256"`
}

// BootstrapConfig names the administrator created on startup when absent.
type BootstrapConfig struct {
	Name     string `env:"BOOTSTRAP_ADMIN_NAME, default=Administrator"`
	Email    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	Password string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

// Enabled reports whether both email and password are configured.
func (b BootstrapConfig) Enabled() bool {
	return b.Email != "" && b.Password != ""
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run safely with.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < minSecretLength {
		return fmt.Errorf("config: JWT_SECRET must be at least %d characters", minSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("config: TOKEN_TTL must be positive")
	}
	if _, ok := domain.ParseRole(c.Auth.DefaultRole); !ok {
		return fmt.Errorf("config: unknown DEFAULT_ROLE %q", c.Auth.DefaultRole)
	}
	if c.Auth.MaxFailures < 1 {
		return fmt.Errorf("config: LOGIN_MAX_FAILURES must be at least 1")
	}
	if c.Audit.Workers < 1 {
		return fmt.Errorf("config: AUDIT_WORKERS must be at least 1")
	}
	return nil
}

// Role returns the configured least-privileged role for public registration.
func (c *Config) Role() domain.Role {
	r, _ := domain.ParseRole(c.Auth.DefaultRole)
	return r
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}
