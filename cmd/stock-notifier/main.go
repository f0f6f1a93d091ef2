// Command stock-notifier watches stock prices and alerts on threshold crossings.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stock-notifier/internal/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		fmt.Fprintln(os.Stderr, "\nStopping, finishing current alert...")
		cancel()
		// A second signal exits immediately.
		<-quit
		os.Exit(130)
	}()

	if err := cli.NewRootCmd(&cli.App{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
