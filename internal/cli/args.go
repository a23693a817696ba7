package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RequireCommand validates that a command to run follows "--".
func RequireCommand(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf(`missing required argument: <command>

Usage: %s

Example:
  %s --max-attempts 5 -- curl -fsS http://localhost:8080/health`, cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}
