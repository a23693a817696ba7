package cli

import (
	"bytes"
	"context"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/vvka-141/retrier/internal/config"
)

type result struct {
	stdout string
	stderr string
	err    error
}

// sandbox moves the test into an empty directory and clears RETRIER_*
// variables so host configuration does not leak in.
func sandbox(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{
		config.EnvMin, config.EnvMax, config.EnvInitial, config.EnvMaxAttempts,
		config.EnvMaxTime, config.EnvFactor, config.EnvJitter, config.EnvDSN,
		config.EnvConnectTimeout,
	} {
		t.Setenv(key, "")
	}
	t.Setenv("RETRIER_NON_INTERACTIVE", "1")
	return dir
}

func run(t *testing.T, args ...string) result {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
}

// countLines returns the number of lines in a file appended to by a test command.
func countLines(t *testing.T, name string) int {
	t.Helper()
	data, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		t.Fatal(err)
	}
	return strings.Count(string(data), "\n")
}
