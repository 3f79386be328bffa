package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	IsTestMode bool `env:"TEST_MODE" envDefault:"false"`
	Port       int  `env:"PORT" envDefault:"9090"`

	// Secret peppers password hashes; the service refuses to start
	// without it so that an empty value can never reach production.
	Secret        string `env:"SECRET,required"`
	PostgresqlURL string `env:"POSTGRESQL_URL,required"`
	RedisURL      string `env:"REDIS_URL,required"`

	BcryptHasherCost           int           `env:"BCRYPT_HASHER_COST" envDefault:"10"`
	BcryptHasherMaxConcurrency int           `env:"BCRYPT_HASHER_MAX_CONCURRENCY" envDefault:"8"`
	MinPasswordLength          int           `env:"MIN_PASSWORD_LENGTH" envDefault:"6"`
	PasswordResetValidDuration time.Duration `env:"PASSWORD_RESET_VALID_DURATION" envDefault:"15m"`
	SessionValidDuration       time.Duration `env:"SESSION_VALID_DURATION" envDefault:"720h"`

	// RevealAccountExistence switches the forgot-password endpoint to an
	// explicit 404 for unknown emails. Enumeration-resistant mode is the
	// default; deployments enable this only knowingly.
	RevealAccountExistence bool `env:"REVEAL_ACCOUNT_EXISTENCE" envDefault:"false"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	AwsRegion                       string  `env:"AWS_REGION" envDefault:"us-east-1"`
	AwsAccessKey                    string  `env:"AWS_ACCESS_KEY"`
	AwsSecretKey                    string  `env:"AWS_SECRET_KEY"`
	AwsEmailSender                  string  `env:"AWS_EMAIL_SENDER"`
	AwsEmailPasswordResetTemplate   string  `env:"AWS_EMAIL_PASSWORD_RESET_TEMPLATE" envDefault:"password_reset"`
	AwsEmailPasswordChangedTemplate string  `env:"AWS_EMAIL_PASSWORD_CHANGED_TEMPLATE" envDefault:"password_changed"`
	PasswordResetBaseURL            url.URL `env:"PASSWORD_RESET_BASE_URL" envDefault:"http://localhost:3000/reset-password"`

	NotificationQueueSize   int           `env:"NOTIFICATION_QUEUE_SIZE" envDefault:"256"`
	NotificationWorkerCount int           `env:"NOTIFICATION_WORKER_COUNT" envDefault:"2"`
	NotificationSendTimeout time.Duration `env:"NOTIFICATION_SEND_TIMEOUT" envDefault:"10s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	if cfg.BcryptHasherCost < 4 {
		return nil, fmt.Errorf("BCRYPT_HASHER_COST must be at least 4, got %d", cfg.BcryptHasherCost)
	}
	if cfg.MinPasswordLength < 1 {
		return nil, fmt.Errorf("MIN_PASSWORD_LENGTH must be positive, got %d", cfg.MinPasswordLength)
	}
	if cfg.PasswordResetValidDuration <= 0 {
		return nil, fmt.Errorf(
			"PASSWORD_RESET_VALID_DURATION must be positive, got %s",
			cfg.PasswordResetValidDuration,
		)
	}
	return cfg, nil
}
