package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edgewake/trace2wake/cli"
)

// shutdownGrace bounds how long a signalled run may take to close devices.
const shutdownGrace = 5 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// run command in goroutine
	done := make(chan error, 1)
	go func() {
		done <- cli.Execute(ctx)
	}()

	// wait for command completion or signal
	var err error
	select {
	case <-sigChan:
		cancel()
		select {
		case err = <-done:
		case <-time.After(shutdownGrace):
			fmt.Fprintln(os.Stderr, "timed out waiting for shutdown")
			os.Exit(1)
		}
	case err = <-done:
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
