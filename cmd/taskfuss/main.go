// Package main is the entry point for the taskfuss CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskfuss/internal/cli"
	"taskfuss/internal/commands"
)

func main() {
	// Cancel in-flight requests and navigation on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, cli.DefaultAppFactory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
