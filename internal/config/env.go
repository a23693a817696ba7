package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by Resolve.
const (
	EnvMin            = "RETRIER_MIN"
	EnvMax            = "RETRIER_MAX"
	EnvInitial        = "RETRIER_INITIAL"
	EnvMaxAttempts    = "RETRIER_MAX_ATTEMPTS"
	EnvMaxTime        = "RETRIER_MAX_TIME"
	EnvFactor         = "RETRIER_FACTOR"
	EnvJitter         = "RETRIER_JITTER"
	EnvDSN            = "RETRIER_DSN"
	EnvConnectTimeout = "RETRIER_CONNECT_TIMEOUT"
)

// Lookup returns the value of an environment variable and whether it is set.
type Lookup func(key string) (string, bool)

// Environment returns a Lookup over the process environment, falling back to
// the given dotenv files. Missing files are skipped. As with godotenv.Load,
// the process environment wins and earlier files win over later ones. An
// empty process value counts as unset.
func Environment(dotenvPaths ...string) (Lookup, error) {
	values := make(map[string]string)
	for _, path := range dotenvPaths {
		fileValues, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for k, v := range fileValues {
			if _, ok := values[k]; !ok {
				values[k] = v
			}
		}
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}, nil
}

// MapLookup returns a Lookup backed by m.
func MapLookup(m map[string]string) Lookup {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}
