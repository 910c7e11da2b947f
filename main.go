package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dev-kir/web-stress/cmd"
	"github.com/dev-kir/web-stress/internal/observability"
)

func main() {
	// A signal-aware context lets a Ctrl-C propagate through cobra into the
	// traffic generator, which then drains instead of dying mid-session.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()
	if err != nil {
		os.Exit(1)
	}
}
