// Package config loads the CLI retry policy from retrier.yaml, dotenv files
// and RETRIER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/retrier/pkg/retrier"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// PolicyConfig mirrors retry.Policy. Durations use time.ParseDuration syntax
// ("250ms", "1m30s"). Unset fields fall through to the next source.
type PolicyConfig struct {
	Min            string   `yaml:"min,omitempty"`
	Max            string   `yaml:"max,omitempty"`
	Initial        string   `yaml:"initial,omitempty"`
	MaxAttempts    *int     `yaml:"max_attempts,omitempty"`
	MaxTime        string   `yaml:"max_time,omitempty"`
	Factor         *float64 `yaml:"factor,omitempty"`
	Jitter         *float64 `yaml:"jitter,omitempty"`
	FatalExitCodes []int    `yaml:"fatal_exit_codes,omitempty"`
}

type PostgresConfig struct {
	DSN            string `yaml:"dsn,omitempty"`
	ConnectTimeout string `yaml:"connect_timeout,omitempty"`
}

type ProjectConfig struct {
	Policy   PolicyConfig   `yaml:"policy"`
	Postgres PostgresConfig `yaml:"postgres"`
}

const ConfigFileName = "retrier.yaml"

// Load reads ConfigFileName from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a config file at path.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", retrier.ErrInvalidConfig, path, err)
	}
	return &cfg, nil
}
