// Package config loads typed configuration from the environment, with an
// optional .env file exported through viper before processing.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// Server holds the serving process configuration.
type Server struct {
	HTTPPort    int           `envconfig:"HTTP_PORT" default:"8080"`
	DatabaseURL string        `envconfig:"DATABASE_URL" default:"file:storekeep.db?_fk=1&_txlock=immediate&_busy_timeout=5000"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"8h"`
	LogDebug    bool          `envconfig:"LOG_DEBUG" default:"false"`
	LogPretty   bool          `envconfig:"LOG_PRETTY" default:"false"`
}

// OpenAI holds the model gateway configuration. With Mock set or an empty
// APIKey the gateway falls back to the offline mock implementation.
type OpenAI struct {
	APIKey      string        `envconfig:"API_KEY"`
	BaseURL     string        `envconfig:"BASE_URL"`
	Model       string        `envconfig:"MODEL" default:"gpt-4o-mini"`
	Temperature float64       `envconfig:"TEMPERATURE" default:"0.7"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"30s"`
	Mock        bool          `envconfig:"MOCK" default:"false"`
}

// MustNew loads a T from the environment or panics.
func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

// New loads a T from the environment, exporting .env first if present.
func New[T any](prefix string) (*T, error) {
	if err := exportEnvironmentIfExists(".env"); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func exportEnvironmentIfExists(filepath string) error {
	info, err := os.Stat(filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}

	viper.SetConfigFile(filepath)
	if err := viper.ReadInConfig(); err != nil {
		return err
	}
	for k, v := range viper.AllSettings() {
		if err := os.Setenv(strings.ToUpper(k), fmt.Sprint(v)); err != nil {
			return err
		}
	}
	return nil
}
