// Package app holds runtime configuration shared by the server and
// worker binaries.
package app

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for both binaries.
type Config struct {
	AppAddr         string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	DBPath string `envconfig:"DB_PATH" default:"./data/nestsplit.db"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	RedisAddr         string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	WorkerConcurrency int           `envconfig:"WORKER_CONCURRENCY" default:"5"`
	SubscriptionScan  time.Duration `envconfig:"SUBSCRIPTION_SCAN_INTERVAL" default:"1h"`
	ReminderInterval  time.Duration `envconfig:"REMINDER_INTERVAL" default:"24h"`

	// DebtReminderThreshold is how far negative (in currency major
	// units) a member's balance may drift before the worker nudges
	// them.
	DebtReminderThreshold float64 `envconfig:"DEBT_REMINDER_THRESHOLD" default:"50"`
}

// LoadConfig reads configuration from the environment, after loading a
// .env file when one is present.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; explicit environment always wins.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	return &cfg, nil
}
