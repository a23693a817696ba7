package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/retrier/internal/cli"
	"github.com/vvka-141/retrier/pkg/retrier"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(retrier.ExitPanic)
		}
	}()

	if os.Getenv("RETRIER_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
