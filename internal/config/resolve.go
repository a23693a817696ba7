package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/vvka-141/retrier/pkg/retrier"
	"github.com/vvka-141/retrier/pkg/retry"
)

// Overrides holds values set explicitly on the command line. Nil means unset.
type Overrides struct {
	Min            *time.Duration
	Max            *time.Duration
	Initial        *time.Duration
	MaxAttempts    *int
	MaxTime        *time.Duration
	Factor         *float64
	Jitter         *float64
	FatalExitCodes []int
	DSN            *string
	ConnectTimeout *time.Duration
}

// Settings is the resolved CLI configuration.
type Settings struct {
	Policy         retry.Policy
	FatalExitCodes []int
	DSN            string
	ConnectTimeout time.Duration

	// Sources records where each policy field came from ("default", "file",
	// "env" or "flag"), keyed by yaml field name.
	Sources map[string]string
}

// Defaults returns the settings used when no source sets a value.
func Defaults() Settings {
	return Settings{
		Policy: retry.Policy{
			Min:              retrier.DefaultMinDelay,
			Max:              retrier.DefaultMaxDelay,
			MaxAttemptsCount: retrier.DefaultMaxAttempts,
			Factor:           retrier.DefaultFactor,
		},
		Sources: map[string]string{},
	}
}

// Resolve merges the sources. Priority (highest to lowest): flags > env >
// file > defaults. file may be nil. Malformed values wrap
// retrier.ErrInvalidConfig; the merged policy is validated.
func Resolve(file *ProjectConfig, env Lookup, flags Overrides) (Settings, error) {
	s := Defaults()
	for _, name := range []string{"min", "max", "initial", "max_attempts", "max_time", "factor", "jitter"} {
		s.Sources[name] = "default"
	}

	if file != nil {
		if err := s.applyFile(file); err != nil {
			return Settings{}, err
		}
	}
	if env != nil {
		if err := s.applyEnv(env); err != nil {
			return Settings{}, err
		}
	}
	s.applyFlags(flags)

	if err := s.Policy.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) applyFile(cfg *ProjectConfig) error {
	p := cfg.Policy
	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"min", p.Min, &s.Policy.Min},
		{"max", p.Max, &s.Policy.Max},
		{"initial", p.Initial, &s.Policy.Initial},
		{"max_time", p.MaxTime, &s.Policy.MaxAttemptsTime},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := parseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%w: invalid policy.%s in %s: %v", retrier.ErrInvalidConfig, d.name, ConfigFileName, err)
		}
		*d.dst = parsed
		s.Sources[d.name] = "file"
	}
	if p.MaxAttempts != nil {
		s.Policy.MaxAttemptsCount = *p.MaxAttempts
		s.Sources["max_attempts"] = "file"
	}
	if p.Factor != nil {
		s.Policy.Factor = *p.Factor
		s.Sources["factor"] = "file"
	}
	if p.Jitter != nil {
		s.Policy.RandomisationFactor = *p.Jitter
		s.Sources["jitter"] = "file"
	}
	if len(p.FatalExitCodes) > 0 {
		s.FatalExitCodes = append([]int(nil), p.FatalExitCodes...)
	}

	if cfg.Postgres.DSN != "" {
		s.DSN = cfg.Postgres.DSN
	}
	if cfg.Postgres.ConnectTimeout != "" {
		parsed, err := parseDuration(cfg.Postgres.ConnectTimeout)
		if err != nil {
			return fmt.Errorf("%w: invalid postgres.connect_timeout in %s: %v", retrier.ErrInvalidConfig, ConfigFileName, err)
		}
		s.ConnectTimeout = parsed
	}
	return nil
}

func (s *Settings) applyEnv(env Lookup) error {
	durations := []struct {
		name string
		key  string
		dst  *time.Duration
	}{
		{"min", EnvMin, &s.Policy.Min},
		{"max", EnvMax, &s.Policy.Max},
		{"initial", EnvInitial, &s.Policy.Initial},
		{"max_time", EnvMaxTime, &s.Policy.MaxAttemptsTime},
	}
	for _, d := range durations {
		v, ok := env(d.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: invalid %s: %v", retrier.ErrInvalidConfig, d.key, err)
		}
		*d.dst = parsed
		s.Sources[d.name] = "env"
	}

	if v, ok := env(EnvMaxAttempts); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: invalid %s: %v", retrier.ErrInvalidConfig, EnvMaxAttempts, err)
		}
		s.Policy.MaxAttemptsCount = n
		s.Sources["max_attempts"] = "env"
	}

	floats := []struct {
		name string
		key  string
		dst  *float64
	}{
		{"factor", EnvFactor, &s.Policy.Factor},
		{"jitter", EnvJitter, &s.Policy.RandomisationFactor},
	}
	for _, f := range floats {
		v, ok := env(f.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid %s: %v", retrier.ErrInvalidConfig, f.key, err)
		}
		*f.dst = parsed
		s.Sources[f.name] = "env"
	}

	if v, ok := env(EnvDSN); ok && v != "" {
		s.DSN = v
	}
	if v, ok := env(EnvConnectTimeout); ok && v != "" {
		parsed, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: invalid %s: %v", retrier.ErrInvalidConfig, EnvConnectTimeout, err)
		}
		s.ConnectTimeout = parsed
	}
	return nil
}

func (s *Settings) applyFlags(f Overrides) {
	set := func(name string, src, dst *time.Duration) {
		if src != nil {
			*dst = *src
			s.Sources[name] = "flag"
		}
	}
	set("min", f.Min, &s.Policy.Min)
	set("max", f.Max, &s.Policy.Max)
	set("initial", f.Initial, &s.Policy.Initial)
	set("max_time", f.MaxTime, &s.Policy.MaxAttemptsTime)

	if f.MaxAttempts != nil {
		s.Policy.MaxAttemptsCount = *f.MaxAttempts
		s.Sources["max_attempts"] = "flag"
	}
	if f.Factor != nil {
		s.Policy.Factor = *f.Factor
		s.Sources["factor"] = "flag"
	}
	if f.Jitter != nil {
		s.Policy.RandomisationFactor = *f.Jitter
		s.Sources["jitter"] = "flag"
	}
	if len(f.FatalExitCodes) > 0 {
		s.FatalExitCodes = append([]int(nil), f.FatalExitCodes...)
	}
	if f.DSN != nil {
		s.DSN = *f.DSN
	}
	if f.ConnectTimeout != nil {
		s.ConnectTimeout = *f.ConnectTimeout
	}
}

// parseDuration accepts time.ParseDuration syntax or a bare integer number
// of milliseconds.
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}
