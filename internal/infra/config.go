package infra

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const insecureJWTSecret = "change-me-in-production"

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL   string `env:"DATABASE_URL"`
	PGHost        string `env:"PGHOST" envDefault:"localhost"`
	PGPort        int    `env:"PGPORT" envDefault:"5432"`
	PGUser        string `env:"PGUSER" envDefault:"transferdesk"`
	PGPassword    string `env:"PGPASSWORD" envDefault:"transferdesk"`
	PGDatabase    string `env:"PGDATABASE" envDefault:"transferdesk"`
	DBMaxConns    int    `env:"DB_MAX_CONNS" envDefault:"10"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	// JWT
	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`

	// Password reset
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`

	// Server
	APIPort  int    `env:"API_PORT" envDefault:"3100"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Kafka
	KafkaBrokers     string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled     bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaTopicPrefix string `env:"KAFKA_TOPIC_PREFIX" envDefault:"transferdesk"`

	// Outbox relay. OUTBOX_RELAY_IN_API=false leaves relaying to cmd/outbox-relay.
	OutboxRelayInAPI   bool          `env:"OUTBOX_RELAY_IN_API" envDefault:"true"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"500ms"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`

	// State stores are reloaded this often to pick up writes from other
	// processes. Zero disables the reload.
	StoreSyncInterval time.Duration `env:"STORE_SYNC_INTERVAL" envDefault:"30s"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Auth abuse protection
	AuthRateLimit    float64       `env:"AUTH_RATE_LIMIT" envDefault:"2"`
	AuthRateBurst    int           `env:"AUTH_RATE_BURST" envDefault:"5"`
	LockoutMaxFailed int           `env:"LOCKOUT_MAX_FAILED" envDefault:"5"`
	LockoutWindow    time.Duration `env:"LOCKOUT_WINDOW" envDefault:"15m"`

	// Export archive (S3-compatible)
	ExportArchiveEnabled bool   `env:"EXPORT_ARCHIVE_ENABLED" envDefault:"false"`
	ExportS3Bucket       string `env:"EXPORT_S3_BUCKET"`
	ExportS3Region       string `env:"EXPORT_S3_REGION" envDefault:"us-east-1"`
	ExportS3Endpoint     string `env:"EXPORT_S3_ENDPOINT"`
	ExportS3PathStyle    bool   `env:"EXPORT_S3_PATH_STYLE" envDefault:"false"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadDotEnv loads .env from the working directory when present. Existing
// environment variables win.
func LoadDotEnv(logger *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
		return
	}
	logger.Info("loaded .env file")
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure or inconsistent configuration.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass the secret checks (local dev only).
func (c *Config) Validate() error {
	if c.ExportArchiveEnabled && c.ExportS3Bucket == "" {
		return fmt.Errorf("EXPORT_S3_BUCKET is required when EXPORT_ARCHIVE_ENABLED=true")
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == insecureJWTSecret {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// SlogLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
