package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	AuthTokenSecret string `env:"AUTH_TOKEN_SECRET,required" validate:"required,min=32"`
	EncryptionKey   string `env:"ENCRYPTION_KEY,required" validate:"required,len=32"`

	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis"`

	ShippingRatesPath string `env:"SHIPPING_RATES_PATH"`

	CampaignSendDelay time.Duration `env:"CAMPAIGN_SEND_DELAY" envDefault:"1s"`
	WelcomeBonusCoins int           `env:"WELCOME_BONUS_COINS" envDefault:"50" validate:"gte=0"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	if c.CampaignSendDelay < 0 {
		return fmt.Errorf("CAMPAIGN_SEND_DELAY must not be negative")
	}

	return nil
}

// CardPaymentsEnabled reports whether card checkout can be offered; without
// a Stripe key orders fall back to cash on delivery.
func (c *Config) CardPaymentsEnabled() bool {
	return strings.TrimSpace(c.StripeSecretKey) != ""
}
