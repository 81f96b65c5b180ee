package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		UserAgent string    `env:"USER_AGENT" envDefault:"maploader/1.0"`
		Transport Transport `envPrefix:"TRANSPORT_"`
		Redis     Redis     `envPrefix:"REDIS_"`
		Logger    Logger    `envPrefix:"LOGGER_"`
		Metrics   Metrics   `envPrefix:"METRICS_"`
	}

	Transport struct {
		DialTimeout           time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
		TLSHandshakeTimeout   time.Duration `env:"TLS_HANDSHAKE_TIMEOUT" envDefault:"5s"`
		ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"15s"`
		IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
		MaxIdleConns          int           `env:"MAX_IDLE_CONNS" envDefault:"64"`
		MaxIdleConnsPerHost   int           `env:"MAX_IDLE_CONNS_PER_HOST" envDefault:"8"`
	}

	Redis struct {
		Enabled  bool          `env:"ENABLED" envDefault:"false"`
		Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
		Password string        `env:"PASSWORD" envDefault:""`
		DB       int           `env:"DB" envDefault:"0"`
		TTL      time.Duration `env:"TTL" envDefault:"24h"`
	}

	Logger struct {
		Level string `env:"LEVEL" envDefault:"info"`
	}

	Metrics struct {
		Addr string `env:"ADDR" envDefault:""`
	}
)

// New loads configuration from the environment, honoring a local .env
// file when present.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: "MAPLOADER_"})
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
