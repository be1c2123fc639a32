package config

import (
	"fmt"

	pkgconfig "github.com/gnimmelf/eike-storefront/pkg/config"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Presentation
	AppName string `env:"APP_NAME" envDefault:"Eike Studio"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Commerce shop API
	ShopAPIURL string `env:"SHOP_API_URL" envDefault:"http://localhost:3000/shop-api"`

	// Redis (sessions)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Session TTL in hours (default: 30 days, matching the shop API's
	// anonymous session lifetime)
	SessionTTL int `env:"SESSION_TTL_HOURS" envDefault:"720"`

	// Kafka (activity events)
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tracing
	TracingEnabled bool   `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`

	// Profiling endpoints are gated to these CIDRs
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables. Validation runs as
// part of the load via the loader's Validatable hook.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.ShopAPIURL == "" {
		return fmt.Errorf("shop API URL must not be empty")
	}
	if c.SessionTTL < 1 {
		return fmt.Errorf("invalid session TTL: %d", c.SessionTTL)
	}
	return nil
}
