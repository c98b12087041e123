// Package main is the ddrctl command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.viam.com/k3ddrss/cli"
	"go.viam.com/k3ddrss/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := cli.NewApp(os.Stdout, nil)
	if err := app.RunContext(ctx, os.Args); err != nil {
		logging.NewLogger("ddrctl").Error(err)
		cancel()
		//nolint:gocritic
		os.Exit(1)
	}
}
