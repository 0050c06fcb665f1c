package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/leshachaplin/eventrelay/internal/destination"
	"github.com/leshachaplin/eventrelay/internal/domain"
	"github.com/leshachaplin/eventrelay/internal/worker"
)

// Event is what the HTTP layer needs from the relay.
type Event interface {
	// Dispatch validates the request and waits for every destination to settle.
	Dispatch(ctx context.Context, in domain.Inbound) (Results, error)
	// Enqueue accepts the request for background dispatch and returns immediately.
	Enqueue(ctx context.Context, in domain.Inbound) error
}

type Sender interface {
	Send(ctx context.Context, req destination.Request) destination.Result
}

// Results is the per-destination outcome of one event, in response order.
type Results struct {
	Meta      destination.Result `json:"Meta"`
	Analytics destination.Result `json:"Google Analytics"`
	Ads       destination.Result `json:"Google Ads"`
}

type Service struct {
	cfg    destination.Config
	sender Sender
	pool   worker.WorkerPool
	now    func() time.Time
	logger zerolog.Logger
}

type Option func(*Service)

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(cfg destination.Config, sender Sender, pool worker.WorkerPool, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		cfg:    cfg.WithDefaults(),
		sender: sender,
		pool:   pool,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	pool.Start(s.processJob)

	return s
}
