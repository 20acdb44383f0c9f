// Package sigctx ties a context to the process termination signals.
package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var terminationSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// NotifyContext returns a copy of parent that is done on the first
// termination signal. A second signal is delivered with the default
// behaviour and kills the process.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, terminationSignals...)
}
