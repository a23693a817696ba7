package cli

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/retrier/pkg/retrier"
)

var fastPolicy = []string{"--min", "1ms", "--max", "5ms"}

func execArgs(extra ...string) []string {
	args := append([]string{"exec"}, fastPolicy...)
	return append(args, extra...)
}

func TestExec_SucceedsFirstTime(t *testing.T) {
	requireShell(t)
	sandbox(t)

	res := run(t, execArgs("--", "sh", "-c", "echo hello")...)
	require.NoError(t, res.err)
	assert.Equal(t, "hello\n", res.stdout)
	assert.NotContains(t, res.stderr, "attempt")
}

func TestExec_RetriesUntilSuccess(t *testing.T) {
	requireShell(t)
	sandbox(t)

	script := `echo x >> attempts; [ "$(wc -l < attempts)" -ge 3 ]`
	res := run(t, execArgs("--max-attempts", "5", "--", "sh", "-c", script)...)
	require.NoError(t, res.err)

	assert.Equal(t, 3, countLines(t, "attempts"))
	assert.Contains(t, res.stderr, "attempt 2: sh -c")
	assert.Contains(t, res.stderr, "succeeded on attempt 3")
}

func TestExec_Exhausted(t *testing.T) {
	requireShell(t)
	sandbox(t)

	res := run(t, execArgs("--max-attempts", "2", "--", "sh", "-c", "echo x >> attempts; exit 1")...)
	require.Error(t, res.err)

	assert.ErrorIs(t, res.err, retrier.ErrMaxAttemptsReached)
	assert.Equal(t, retrier.ExitRetriesExhausted, ExitCode(res.err))
	assert.Equal(t, 2, countLines(t, "attempts"))
	assert.Contains(t, res.stderr, "failed after 2 attempt(s)")
}

func TestExec_FatalExitCodeStopsImmediately(t *testing.T) {
	requireShell(t)
	sandbox(t)

	res := run(t, execArgs("--max-attempts", "5", "--fatal-exit-code", "7", "--",
		"sh", "-c", "echo x >> attempts; exit 7")...)
	require.Error(t, res.err)

	assert.Equal(t, 1, countLines(t, "attempts"))
	assert.NotErrorIs(t, res.err, retrier.ErrMaxAttemptsReached)
	assert.Equal(t, 7, ExitCode(res.err))
}

func TestExec_MaxTime(t *testing.T) {
	requireShell(t)
	sandbox(t)

	res := run(t, "exec", "--min", "40ms", "--max", "1s", "--max-attempts", "0", "--max-time", "100ms",
		"--", "sh", "-c", "exit 1")
	require.Error(t, res.err)

	assert.ErrorIs(t, res.err, retrier.ErrMaxAttemptTimeReached)
	assert.Contains(t, res.err.Error(), retrier.MaxAttemptTimeMessage)
	assert.Equal(t, retrier.ExitRetriesExhausted, ExitCode(res.err))
}

func TestExec_AttemptTimeout(t *testing.T) {
	requireShell(t)
	sandbox(t)

	start := time.Now()
	res := run(t, execArgs("--max-attempts", "1", "--attempt-timeout", "50ms", "--", "sleep", "5")...)
	require.Error(t, res.err)

	assert.Less(t, time.Since(start), 4*time.Second)
	assert.Equal(t, retrier.ExitRetriesExhausted, ExitCode(res.err))
}

func TestExec_MissingCommandIsUsageError(t *testing.T) {
	sandbox(t)

	res := run(t, "exec")
	require.Error(t, res.err)
	assert.Equal(t, retrier.ExitUsageError, ExitCode(res.err))
}

func TestExec_InvalidPolicy(t *testing.T) {
	sandbox(t)

	res := run(t, "exec", "--min", "10s", "--max", "1s", "--", "true")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, retrier.ErrInvalidRange)
	assert.Equal(t, retrier.ExitConfigError, ExitCode(res.err))
}

func TestExec_EnvironmentAndFlagPrecedence(t *testing.T) {
	requireShell(t)
	sandbox(t)
	t.Setenv("RETRIER_MAX_ATTEMPTS", "2")

	res := run(t, execArgs("--", "sh", "-c", "echo x >> env_attempts; exit 1")...)
	require.Error(t, res.err)
	assert.Equal(t, 2, countLines(t, "env_attempts"))

	res = run(t, execArgs("--max-attempts", "3", "--", "sh", "-c", "echo x >> flag_attempts; exit 1")...)
	require.Error(t, res.err)
	assert.Equal(t, 3, countLines(t, "flag_attempts"))
}

func TestExec_ConfigFileAndDotenv(t *testing.T) {
	requireShell(t)
	sandbox(t)

	require.NoError(t, os.WriteFile("retrier.yaml", []byte(`policy:
  min: 1ms
  max: 5ms
  max_attempts: 4
  fatal_exit_codes: [9]
`), 0644))
	require.NoError(t, os.WriteFile(".env", []byte("RETRIER_MAX_ATTEMPTS=2\n"), 0644))

	res := run(t, "exec", "--", "sh", "-c", "echo x >> attempts; exit 1")
	require.Error(t, res.err)
	assert.Equal(t, 2, countLines(t, "attempts"), "dotenv overrides retrier.yaml")

	res = run(t, "exec", "--", "sh", "-c", "echo x >> fatal; exit 9")
	require.Error(t, res.err)
	assert.Equal(t, 1, countLines(t, "fatal"), "fatal_exit_codes from retrier.yaml")
}

func TestExec_MissingConfigFile(t *testing.T) {
	sandbox(t)

	res := run(t, "--config", "does-not-exist.yaml", "exec", "--", "true")
	require.Error(t, res.err)
	assert.Equal(t, retrier.ExitConfigError, ExitCode(res.err))
}

func TestExec_VerboseLogsPolicyAndRunID(t *testing.T) {
	requireShell(t)
	sandbox(t)

	res := run(t, execArgs("-v", "--", "sh", "-c", "exit 0")...)
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "[VERBOSE] Policy resolved:")
	assert.Contains(t, res.stderr, "Min: 1ms (flag)")
	assert.Contains(t, res.stderr, "Factor: 2 (default)")
	assert.Contains(t, res.stderr, "[run ")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, retrier.ExitSuccess, ExitCode(nil))
	assert.Equal(t, retrier.ExitGeneralError, ExitCode(errors.New("boom")))
	assert.Equal(t, retrier.ExitCancelled, ExitCode(retrier.ErrCancelled))
}
