package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"ShopKeeper"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		// Path to the on-device sqlite file holding the canonical local state.
		Path string `envconfig:"DB_PATH" default:"shopkeeper.db"`
	}

	Store struct {
		// ID scoping all remote documents under stores/{id}/...
		ID string `envconfig:"STORE_ID" default:"store_default"`
	}

	Remote struct {
		// Driver selects the remote document store: "postgres", "memory" or
		// "off" (purely local operation, no sync scheduled).
		Driver string `envconfig:"REMOTE_DRIVER" default:"off"`
		URL    string `envconfig:"REMOTE_DATABASE_URL" default:""`
	}

	Sync struct {
		Period     time.Duration `envconfig:"SYNC_PERIOD" default:"30m"`
		MinBackoff time.Duration `envconfig:"SYNC_MIN_BACKOFF" default:"10s"`
		MaxRetries int           `envconfig:"SYNC_MAX_RETRIES" default:"3"`
	}

	Auth struct {
		JWTSecret string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
		JWTExpiry time.Duration `envconfig:"JWT_EXPIRY" default:"24h"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
