package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dbsmedya/goreef/internal/logger"
)

// signalContext returns a context cancelled on SIGINT or SIGTERM.
// The returned stop function releases the signal handler.
func signalContext(parent context.Context, log *logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Warnf("Received %s, cancelling", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
