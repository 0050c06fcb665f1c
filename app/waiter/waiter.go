package waiter

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

type WaitFunc func(ctx context.Context) error

// Waiter runs long-lived functions until the first one fails, the context is cancelled
// or a shutdown signal arrives.
type Waiter interface {
	Add(fns ...WaitFunc)
	Wait() error
	Context() context.Context
	CancelFunc() context.CancelFunc
}

type waiterCfg struct {
	signals []os.Signal
}

type waiter struct {
	ctx       context.Context
	cancelFn  context.CancelFunc
	waitFuncs []WaitFunc
}

func NewWaiter(ctx context.Context, cancelFn context.CancelFunc, options ...Option) Waiter {
	cfg := &waiterCfg{
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, option := range options {
		option(cfg)
	}

	sigCtx, stop := signal.NotifyContext(ctx, cfg.signals...)

	return &waiter{
		ctx: sigCtx,
		cancelFn: func() {
			stop()
			cancelFn()
		},
	}
}

func (w *waiter) Add(fns ...WaitFunc) {
	w.waitFuncs = append(w.waitFuncs, fns...)
}

func (w *waiter) Wait() error {
	group, gCtx := errgroup.WithContext(w.ctx)

	group.Go(func() error {
		<-gCtx.Done()
		w.cancelFn()
		return nil
	})

	for _, fn := range w.waitFuncs {
		waitFunc := fn
		group.Go(func() error {
			return waitFunc(gCtx)
		})
	}

	return group.Wait()
}

func (w *waiter) Context() context.Context {
	return w.ctx
}

func (w *waiter) CancelFunc() context.CancelFunc {
	return w.cancelFn
}
