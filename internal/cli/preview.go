package cli

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/vvka-141/retrier/internal/tui"
	"github.com/vvka-141/retrier/pkg/backoff"
)

type previewFlags struct {
	policy policyFlags
	count  int
	seed   int64
}

func newPreviewCmd() *cobra.Command {
	flags := &previewFlags{}
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the delay sequence a policy produces",
		Long: `Print the first delays of the backoff curve for the resolved policy.

With jitter, pass --seed to get the same sequence on every run.`,
		Example: `  retrier preview -n 8
  retrier preview --min 250ms --max 10s --factor 1.5 --jitter 0.3 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, flags)
		},
	}

	addPolicyFlags(cmd, &flags.policy)
	cmd.Flags().IntVarP(&flags.count, "count", "n", 10, "Number of delays to print")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "Seed for jitter (0 = random)")
	return cmd
}

func runPreview(cmd *cobra.Command, flags *previewFlags) error {
	if flags.count < 1 {
		return fmt.Errorf("invalid argument %d for \"--count\": must be at least 1", flags.count)
	}

	settings, err := loadSettings(cmd, flags.policy.overrides(cmd))
	if err != nil {
		return err
	}

	opts := []backoff.Option{backoff.WithLogger(newLogger(cmd))}
	if flags.seed != 0 {
		opts = append(opts, backoff.WithRandom(rand.New(rand.NewSource(flags.seed)).Float64))
	}

	curve := settings.Policy.Curve()
	b, err := backoff.Exponential(curve, opts...)
	if err != nil {
		return err
	}

	policy := settings.Policy
	rows := make([]tui.DelayRow, 0, flags.count)
	total := policy.Initial
	ceilingAt := 0
	for i := 0; i < flags.count; i++ {
		delay := b.Next()
		total += delay
		rows = append(rows, tui.DelayRow{Step: b.Step() - 1, Delay: delay, Cumulative: total})
		if ceilingAt == 0 && policy.MaxAttemptsTime > 0 && total > policy.MaxAttemptsTime {
			ceilingAt = i + 1
		}
	}

	w := cmd.OutOrStdout()
	styled := tui.IsInteractive(w)
	out := tui.NewPrinter(w, styled)

	if styled {
		out.Title("Backoff %v → %v, factor %v, jitter %v", curve.InitialDelay, curve.MaxDelay,
			b.Policy().Factor, curve.RandomisationFactor)
	}
	fmt.Fprint(w, tui.RenderDelays(rows, curve.MaxDelay, styled))

	if n := policy.MaxAttemptsCount; n > 0 && n <= flags.count {
		out.Warning("with max attempts %d, only the first %d delay(s) are used", n, n-1)
	}
	if ceilingAt > 0 {
		out.Warning("step %d passes the %v time limit", ceilingAt-1, policy.MaxAttemptsTime)
	}
	return nil
}
