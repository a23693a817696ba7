package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/retrier/internal/logging"
	"github.com/vvka-141/retrier/pkg/retrier"
)

const rootLong = `retrier runs commands and probes until they succeed, waiting between
attempts on an exponential backoff curve with optional jitter.

Policy values come from flags, then RETRIER_* environment variables (a .env
file is read as a fallback), then retrier.yaml, then built-in defaults.

Exit Codes:
  0  - Success
  1  - General error (command failed with a fatal status)
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or policy
  11 - Connection to a probed service failed
  12 - Retries exhausted (attempt count or time limit reached)
  13 - Cancelled (interrupted before the run settled)`

// Execute runs the root command.
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout, os.Stderr)
		return nil
	}
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "retrier",
		Short:        "Retry commands and wait for services with exponential backoff",
		Long:         rootLong,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	cmd.PersistentFlags().String("config", "", "Path to a retrier.yaml (default: ./retrier.yaml if present)")
	cmd.PersistentFlags().String("env-file", ".env", "Dotenv file consulted for RETRIER_* variables")

	cmd.AddCommand(
		newExecCmd(),
		newWaitPostgresCmd(),
		newPreviewCmd(),
		newVersionCmd(),
	)
	return cmd
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

// newLogger returns a stderr logger honouring --verbose.
func newLogger(cmd *cobra.Command) retrier.Logger {
	return logging.NewConsoleLogger(getVerboseFlag(cmd), logging.WithWriter(cmd.ErrOrStderr()))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
