package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/jobtx/cmd/jobtx"
	"github.com/arthur-debert/jobtx/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := jobtx.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.IsCleanExit(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(errors.ExitCode(err))
}
