package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/leshachaplin/eventrelay/internal/domain"
)

var (
	// ErrStopped is returned by Process once GracefulStop has been called.
	ErrStopped = errors.New("worker pool stopped")
	// ErrQueueFull is returned by Process when every queue slot is taken.
	ErrQueueFull = errors.New("worker queue is full")
)

type WorkerPool interface {
	Start(executeFn func(ctx context.Context, job domain.Job) error)
	GracefulStop()
	Process(ctx context.Context, job domain.Job) error
}

// Pool runs background jobs on a fixed set of goroutines.
// Jobs accepted by Process always run to completion: GracefulStop stops intake and
// waits for the queue to drain, and job contexts are not cancelled by shutdown.
type Pool struct {
	numWorkers int
	jobs       chan domain.Job
	start      sync.Once
	stop       sync.Once
	mu         sync.RWMutex
	stopped    bool
	ctx        context.Context
	wg         *sync.WaitGroup
	logger     zerolog.Logger
}

func New(ctx context.Context, cfg Config, logger zerolog.Logger) *Pool {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = defaultNumWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	return &Pool{
		numWorkers: cfg.NumWorkers,
		jobs:       make(chan domain.Job, cfg.QueueSize),
		ctx:        context.WithoutCancel(ctx),
		wg:         &sync.WaitGroup{},
		logger:     logger,
	}
}

func (w *Pool) Start(executeFn func(ctx context.Context, job domain.Job) error) {
	w.start.Do(func() {
		for i := 0; i < w.numWorkers; i++ {
			w.wg.Add(1)
			l := w.logger.With().Int("worker", i).Logger()
			go w.work(l, executeFn)
		}
	})
}

// GracefulStop blocks until every accepted job has finished.
func (w *Pool) GracefulStop() {
	w.stop.Do(func() {
		w.mu.Lock()
		w.stopped = true
		close(w.jobs)
		w.mu.Unlock()

		w.wg.Wait()
	})
}

// Process queues job without waiting. A full queue rejects the job with ErrQueueFull.
// ctx has no effect on the job once queued.
func (w *Pool) Process(ctx context.Context, job domain.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return ErrStopped
	}

	select {
	case w.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *Pool) work(
	logger zerolog.Logger,
	executeFn func(ctx context.Context, job domain.Job) error,
) {
	defer w.wg.Done()
	for job := range w.jobs {
		logger.Debug().Str("JOB_ID", job.ID).Msg("start processing job")
		if err := w.execute(executeFn, job); err != nil {
			w.onFailure(logger, job, err)
		}
		logger.Debug().Str("JOB_ID", job.ID).Msg("end processing job")
	}
}

func (w *Pool) execute(executeFn func(ctx context.Context, job domain.Job) error, job domain.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return executeFn(w.ctx, job)
}

func (w *Pool) onFailure(logger zerolog.Logger, job domain.Job, err error) {
	logger.Error().Stack().Err(err).Str("JOB_ID", job.ID).Msg("failed to process job")
}
