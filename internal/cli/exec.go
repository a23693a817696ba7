package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/retrier/internal/classify"
	"github.com/vvka-141/retrier/internal/tui"
	"github.com/vvka-141/retrier/pkg/retrier"
	"github.com/vvka-141/retrier/pkg/retry"
)

type execFlags struct {
	policy         policyFlags
	fatalExitCodes []int
	attemptTimeout time.Duration
}

func newExecCmd() *cobra.Command {
	flags := &execFlags{}
	cmd := &cobra.Command{
		Use:   "exec [flags] -- <command> [args...]",
		Short: "Run a command until it exits 0",
		Long: `Run a command, retrying on non-zero exit with exponential backoff.

Each attempt runs the command with the same arguments, stdin is not attached.
An exit status listed in --fatal-exit-code stops the run immediately.`,
		Example: `  retrier exec -- curl -fsS http://localhost:8080/health
  retrier exec --max-attempts 10 --max 5s --jitter 0.2 -- ./migrate.sh
  retrier exec --max-time 2m --fatal-exit-code 2 -- make integration`,
		Args: RequireCommand,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, flags, args)
		},
	}

	addPolicyFlags(cmd, &flags.policy)
	cmd.Flags().IntSliceVar(&flags.fatalExitCodes, "fatal-exit-code", nil, "Exit status that stops retrying (repeatable)")
	cmd.Flags().DurationVar(&flags.attemptTimeout, "attempt-timeout", 0, "Kill an attempt that runs longer than this (0 = no limit)")
	return cmd
}

func runExec(cmd *cobra.Command, flags *execFlags, args []string) error {
	overrides := flags.policy.overrides(cmd)
	if cmd.Flags().Changed("fatal-exit-code") {
		overrides.FatalExitCodes = flags.fatalExitCodes
	}

	settings, err := loadSettings(cmd, overrides)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	r, err := retry.New[struct{}](settings.Policy,
		retry.WithLogger(logger),
		retry.WithClassifier(classify.NewExitCodes(settings.FatalExitCodes...)),
	)
	if err != nil {
		return err
	}

	out := tui.NewPrinter(cmd.ErrOrStderr(), tui.IsInteractive(cmd.ErrOrStderr()))
	commandLine := strings.Join(args, " ")

	r.OnAttempt(func() {
		if n := r.AttemptNumber(); n > 1 {
			out.Warning("attempt %d: %s", n, commandLine)
		}
	})

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer context.AfterFunc(ctx, r.Cancel)()

	start := time.Now()
	_, err = r.Run(func(ctx context.Context) (struct{}, error) {
		return struct{}{}, runAttempt(ctx, cmd, flags.attemptTimeout, args)
	}).Wait(context.Background())

	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		out.Failure("%s failed after %d attempt(s) in %v: %v", commandLine, r.AttemptNumber(), elapsed, err)
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if r.AttemptNumber() > 1 {
		out.Success("%s succeeded on attempt %d after %v", commandLine, r.AttemptNumber(), elapsed)
	}
	return nil
}

// runAttempt runs the command once. The process is killed if ctx is
// cancelled or the attempt timeout passes.
func runAttempt(ctx context.Context, cmd *cobra.Command, timeout time.Duration, args []string) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	child := exec.CommandContext(ctx, args[0], args[1:]...)
	child.Stdout = cmd.OutOrStdout()
	child.Stderr = cmd.ErrOrStderr()

	err := child.Run()
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("attempt timed out after %v: %w", timeout, err)
	}
	return err
}

// ExitCode maps err to a process exit status. A command that stopped the run
// with a fatal status passes that status through; everything else follows
// retrier.ExitCodeForError.
func ExitCode(err error) int {
	if errors.Is(err, retrier.ErrMaxAttemptsReached) ||
		errors.Is(err, retrier.ErrMaxAttemptTimeReached) ||
		errors.Is(err, retrier.ErrCancelled) {
		return retrier.ExitCodeForError(err)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return retrier.ExitCodeForError(err)
}
