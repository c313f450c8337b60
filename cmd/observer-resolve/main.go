// Command observer-resolve resolves which observers are interested in a
// class, either once from a snapshot file or continuously from Kafka.
//
// Configuration is read from OBSERVER_* environment variables, optionally
// seeded from a .env file given with --env-file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
