package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/retrier/internal/classify"
	"github.com/vvka-141/retrier/internal/config"
	"github.com/vvka-141/retrier/internal/probe"
	"github.com/vvka-141/retrier/internal/tui"
	"github.com/vvka-141/retrier/pkg/retrier"
	"github.com/vvka-141/retrier/pkg/retry"
)

type waitPostgresFlags struct {
	policy         policyFlags
	dsn            string
	connectTimeout time.Duration
}

func newWaitPostgresCmd() *cobra.Command {
	flags := &waitPostgresFlags{}
	cmd := &cobra.Command{
		Use:   "wait-postgres",
		Short: "Wait until a PostgreSQL server accepts connections",
		Long: `Connect and ping a PostgreSQL server until it answers.

Connection refusals, DNS failures, timeouts and "database system is starting
up" are retried. Errors such as a wrong password or a missing database stop
the run immediately.

The connection string comes from --dsn, RETRIER_DSN or postgres.dsn in
retrier.yaml.`,
		Example: `  retrier wait-postgres --dsn postgres://postgres@localhost:5432/postgres
  RETRIER_DSN=postgres://app@db/app retrier wait-postgres --max-time 1m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWaitPostgres(cmd, flags)
		},
	}

	addPolicyFlags(cmd, &flags.policy)
	cmd.Flags().StringVar(&flags.dsn, "dsn", "", "PostgreSQL connection string (URL or key=value)")
	cmd.Flags().DurationVar(&flags.connectTimeout, "connect-timeout", probe.DefaultConnectTimeout, "Timeout for a single connection attempt")
	return cmd
}

func runWaitPostgres(cmd *cobra.Command, flags *waitPostgresFlags) error {
	overrides := flags.policy.overrides(cmd)
	if cmd.Flags().Changed("dsn") {
		overrides.DSN = &flags.dsn
	}
	if cmd.Flags().Changed("connect-timeout") {
		overrides.ConnectTimeout = &flags.connectTimeout
	}

	settings, err := loadSettings(cmd, overrides)
	if err != nil {
		return err
	}
	if settings.DSN == "" {
		return fmt.Errorf("%w: a connection string is required (--dsn, RETRIER_DSN or postgres.dsn in %s)",
			retrier.ErrInvalidConfig, config.ConfigFileName)
	}

	var probeOpts []probe.PostgresOption
	if settings.ConnectTimeout > 0 {
		probeOpts = append(probeOpts, probe.WithConnectTimeout(settings.ConnectTimeout))
	}
	p, err := probe.NewPostgres(settings.DSN, probeOpts...)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	r, err := retry.New[string](settings.Policy,
		retry.WithLogger(logger),
		retry.WithClassifier(classify.NewPostgres()),
	)
	if err != nil {
		return err
	}

	out := tui.NewPrinter(cmd.ErrOrStderr(), tui.IsInteractive(cmd.ErrOrStderr()))
	r.OnFailed(func(err error) {
		out.Failure("%s is not ready after %d attempt(s)", p.Target(), r.AttemptNumber())
	})
	logger.Verbose("waiting for PostgreSQL at %s", p.Target())

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer context.AfterFunc(ctx, r.Cancel)()

	start := time.Now()
	version, err := r.Run(p.Ping).Wait(context.Background())
	if err != nil {
		if errors.Is(err, retrier.ErrCancelled) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", retrier.ErrConnectionFailed, p.Target(), err)
	}

	out.Success("PostgreSQL %s is ready at %s (attempt %d, %v)",
		version, p.Target(), r.AttemptNumber(), time.Since(start).Round(time.Millisecond))
	return nil
}
