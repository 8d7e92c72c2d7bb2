package config

import (
	"fmt"
	"net/url"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/ilyakaznacheev/cleanenv"

	"majaz-portal/internal/auth"
	"majaz-portal/internal/idempotency"
	"majaz-portal/internal/logger"
	"majaz-portal/internal/mail"
	"majaz-portal/internal/payments"
	"majaz-portal/internal/repository/postgres"
	"majaz-portal/internal/server"
	"majaz-portal/internal/teamcache"
)

var (
	stripeSecretRe  = regexp.MustCompile(`^(sk|rk)_(test|live)_[A-Za-z0-9]+$`)
	publishableRe   = regexp.MustCompile(`^pk_(test|live)_[A-Za-z0-9]+$`)
	webhookSecretRe = regexp.MustCompile(`^whsec_[A-Za-z0-9]+$`)
)

type Config struct {
	HTTP      server.Config
	Logger    logger.Config
	Postgres  postgres.Config
	Stripe    payments.Config
	Mail      mail.Config
	Redis     idempotency.Config
	Auth      auth.Config
	TeamCache teamcache.Config
}

// New reads path (a .env file) and lets process environment override it.
func New(path string) (*Config, error) {
	var cfg Config

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.Errors{
		"HTTP_PORT":                validation.Validate(c.HTTP.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		"HTTP_TIMEOUT":             validation.Validate(c.HTTP.Timeout, validation.Required),
		"LOGGER_LEVEL":             validation.Validate(c.Logger.Level, validation.In("debug", "info", "warn", "error")),
		"POSTGRES_MAX_CONNECTIONS": validation.Validate(c.Postgres.MaxConns, validation.Min(1)),
		"POSTGRES_MIN_CONNECTIONS": validation.Validate(c.Postgres.MinConns, validation.Min(0), validation.Max(c.Postgres.MaxConns)),
		"STRIPE_SECRET_KEY":        validation.Validate(c.Stripe.SecretKey, validation.Required, validation.Match(stripeSecretRe)),
		"STRIPE_WEBHOOK_SECRET":    validation.Validate(c.Stripe.WebhookSecret, validation.Required, validation.Match(webhookSecretRe)),
		"STRIPE_PUBLISHABLE_KEY":   validation.Validate(c.Stripe.PublishableKey, validation.Required, validation.Match(publishableRe)),
		"MAIL_PORT":                validation.Validate(c.Mail.Port, validation.Min(1), validation.Max(65535)),
		"MAIL_OPS_ADDRESS":         validation.Validate(c.Mail.OpsAddress, is.Email),
		"MAIL_DASHBOARD_URL":       validation.Validate(c.Mail.DashboardURL, validation.Required, is.URL),
		"JWT_SECRET":               validation.Validate(c.Auth.Secret, validation.Required, validation.Length(32, 0)),
		"REDIS_CLAIM_TTL":          validation.Validate(c.Redis.TTL, validation.Min(c.HTTP.Timeout)),
		"TEAM_CACHE_SIZE":          validation.Validate(c.TeamCache.Size, validation.Min(1)),
		"HTTP_CORS_ORIGINS":        origins(c.HTTP.CORSOrigins),
	}.Filter()
}

func origins(values []string) error {
	for _, s := range values {
		if s == "*" {
			continue
		}

		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%q is not an origin", s)
		}
	}
	return nil
}
