package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Port int `env:"PORT" envDefault:"5173"`

		// gin mode: debug, release or test
		GinMode string `env:"GIN_MODE" envDefault:"release"`

		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

		// Upper bound for JSON request bodies
		MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"32768"`
	}

	Database struct {
		Path string `env:"DB_PATH" envDefault:"database/netita.db"`

		// Catalog seed loaded when the property store is empty
		SeedPath string `env:"SEED_PATH" envDefault:"data/properties.json"`
	}

	Analyze struct {
		// Registered domain that listing URLs (and every redirect hop) must belong to
		AllowedDomain string `env:"ANALYZE_ALLOWED_DOMAIN" envDefault:"imoti.net"`

		FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"12s"`

		MaxHTMLBytes int64 `env:"FETCH_MAX_BYTES" envDefault:"1000000"`

		MaxRedirects int `env:"FETCH_MAX_REDIRECTS" envDefault:"10"`

		MetricsPath string `env:"DISTRICT_METRICS_PATH" envDefault:"data/district_metrics.json"`

		// Fixed lev/euro peg
		BGNPerEUR float64 `env:"BGN_PER_EUR" envDefault:"1.95583"`
	}

	Log struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
	}
}

// LoadConfig reads an optional .env file and then parses the environment.
func LoadConfig() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
