// Package context provides signal-aware contexts for the CLI.
package context

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"
)

// signalContext is a context cancelled by its parent, its deadline or one
// of the watched signals.
type signalContext struct {
	context.Context

	cancel   context.CancelFunc
	stopOnce sync.Once
	stopCh   chan struct{}
	sigCh    chan os.Signal
}

// stop releases the signal subscription and cancels the context.
// It can be called multiple times safely.
func (sc *signalContext) stop() {
	sc.stopOnce.Do(func() {
		signal.Stop(sc.sigCh)
		sc.cancel()
		close(sc.stopCh)
	})
}

func (sc *signalContext) watch() {
	select {
	case <-sc.sigCh:
		sc.cancel()
	case <-sc.stopCh:
	case <-sc.Context.Done():
	}
}

func newSignalContext(ctx context.Context, cancel context.CancelFunc, sigs []os.Signal) *signalContext {
	sc := &signalContext{
		Context: ctx,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
		sigCh:   make(chan os.Signal, 1),
	}
	signal.Notify(sc.sigCh, sigs...)
	go sc.watch()
	return sc
}

// WithSignal returns a context cancelled when any of sigs is received.
// The returned cancel function must be called to release the signal
// subscription.
//
// Example:
//
//	ctx, cancel := WithSignal(context.Background(), os.Interrupt)
//	defer cancel()
func WithSignal(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sc := newSignalContext(ctx, cancel, sigs)
	return sc, sc.stop
}

// WithSignalTimeout is WithSignal with a deadline. The CLI uses it to bound
// how long a reporter drain may take once input has ended.
func WithSignalTimeout(parent context.Context, timeout time.Duration, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	sc := newSignalContext(ctx, cancel, sigs)
	return sc, sc.stop
}
