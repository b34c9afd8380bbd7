package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pneuma/internal/cli"
	"pneuma/internal/infrastructure/env"
)

func main() {
	envService := env.NewEnvService()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(envService).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
