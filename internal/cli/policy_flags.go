package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/retrier/internal/config"
	"github.com/vvka-141/retrier/pkg/retrier"
)

// policyFlags holds the retry policy flag values shared by all commands.
type policyFlags struct {
	min         time.Duration
	max         time.Duration
	initial     time.Duration
	maxAttempts int
	maxTime     time.Duration
	factor      float64
	jitter      float64
}

func addPolicyFlags(cmd *cobra.Command, f *policyFlags) {
	flags := cmd.Flags()
	flags.DurationVar(&f.min, "min", retrier.DefaultMinDelay, "Base delay of the backoff curve")
	flags.DurationVar(&f.max, "max", retrier.DefaultMaxDelay, "Delay cap")
	flags.DurationVar(&f.initial, "initial", 0, "Delay before the first attempt")
	flags.IntVar(&f.maxAttempts, "max-attempts", retrier.DefaultMaxAttempts, "Give up after this many attempts (0 = unlimited)")
	flags.DurationVar(&f.maxTime, "max-time", 0, "Give up when the next attempt would start after this long (0 = unlimited)")
	flags.Float64Var(&f.factor, "factor", retrier.DefaultFactor, "Growth multiplier per attempt")
	flags.Float64Var(&f.jitter, "jitter", 0, "Randomisation factor between 0 and 1")
}

// overrides returns only the flags the user set explicitly, so that
// environment and file values are not masked by flag defaults.
func (f *policyFlags) overrides(cmd *cobra.Command) config.Overrides {
	changed := cmd.Flags().Changed
	var o config.Overrides
	if changed("min") {
		o.Min = &f.min
	}
	if changed("max") {
		o.Max = &f.max
	}
	if changed("initial") {
		o.Initial = &f.initial
	}
	if changed("max-attempts") {
		o.MaxAttempts = &f.maxAttempts
	}
	if changed("max-time") {
		o.MaxTime = &f.maxTime
	}
	if changed("factor") {
		o.Factor = &f.factor
	}
	if changed("jitter") {
		o.Jitter = &f.jitter
	}
	return o
}

// loadSettings merges retrier.yaml, the dotenv file, the environment and
// the given overrides.
func loadSettings(cmd *cobra.Command, o config.Overrides) (config.Settings, error) {
	projectCfg, err := loadProjectConfig(cmd)
	if err != nil {
		return config.Settings{}, err
	}

	envFile, _ := cmd.Flags().GetString("env-file")
	var dotenv []string
	if envFile != "" {
		dotenv = append(dotenv, envFile)
	}
	env, err := config.Environment(dotenv...)
	if err != nil {
		return config.Settings{}, fmt.Errorf("%w: %v", retrier.ErrInvalidConfig, err)
	}

	settings, err := config.Resolve(projectCfg, env, o)
	if err != nil {
		return config.Settings{}, err
	}

	if getVerboseFlag(cmd) {
		logSettingsVerbose(cmd, settings)
	}
	return settings, nil
}

// loadProjectConfig loads --config, or ./retrier.yaml when present.
// A missing default file is not an error.
func loadProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		cfg, err := config.Load(".")
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
		}
		return cfg, nil
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("%w: %s: %v", retrier.ErrInvalidConfig, path, err)
		}
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, nil
}

func logSettingsVerbose(cmd *cobra.Command, s config.Settings) {
	w := cmd.ErrOrStderr()
	p := s.Policy
	fmt.Fprintf(w, "[VERBOSE] Policy resolved:\n")
	fmt.Fprintf(w, "  Min: %v (%s)\n", p.Min, s.Sources["min"])
	fmt.Fprintf(w, "  Max: %v (%s)\n", p.Max, s.Sources["max"])
	fmt.Fprintf(w, "  Initial: %v (%s)\n", p.Initial, s.Sources["initial"])
	fmt.Fprintf(w, "  Max Attempts: %d (%s)\n", p.MaxAttemptsCount, s.Sources["max_attempts"])
	fmt.Fprintf(w, "  Max Time: %v (%s)\n", p.MaxAttemptsTime, s.Sources["max_time"])
	fmt.Fprintf(w, "  Factor: %v (%s)\n", p.Factor, s.Sources["factor"])
	fmt.Fprintf(w, "  Jitter: %v (%s)\n", p.RandomisationFactor, s.Sources["jitter"])
}
