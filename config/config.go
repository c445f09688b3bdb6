package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Session store backends
const (
	SessionBackendRedis  = "redis"
	SessionBackendMongo  = "mongo"
	SessionBackendMemory = "memory"
)

// Config holds the runtime settings of the web front-end
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"GO_ENV" envDefault:"development"`

	// Remote CivicSync API
	APIBaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:5000/api"`
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`

	// Map provider used for reverse geocoding
	MapboxToken   string  `env:"MAPBOX_TOKEN"`
	MapboxBaseURL string  `env:"MAPBOX_BASE_URL" envDefault:"https://api.mapbox.com"`
	GeocodeRPS    float64 `env:"GEOCODE_RPS" envDefault:"5"`

	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"redis"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"72h"`
	CookieDomain   string        `env:"DOMAIN"`

	RedisAddress  string `env:"REDIS_ADDRESS" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"civicsync_web"`

	ReportLimitPrefix string `env:"REDIS_QUEUE_FOR_REPORT_LIMIT" envDefault:"report_limit"`
	ReportDailyLimit  int    `env:"REPORT_DAILY_LIMIT" envDefault:"10"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	LogLevel string `env:"LOG_LEVEL"`
	LogDev   bool   `env:"LOG_DEV"`
}

// Load reads a .env file when present and parses the environment into Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	switch c.SessionBackend {
	case SessionBackendRedis, SessionBackendMemory:
	case SessionBackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("config: MONGODB_URI is required when SESSION_BACKEND=mongo")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.ReportDailyLimit < 1 {
		return fmt.Errorf("config: REPORT_DAILY_LIMIT must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
