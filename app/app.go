package app

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/leshachaplin/eventrelay/app/waiter"
	"github.com/leshachaplin/eventrelay/internal/config"
	"github.com/leshachaplin/eventrelay/internal/destination"
	appServer "github.com/leshachaplin/eventrelay/internal/server/http"
	"github.com/leshachaplin/eventrelay/internal/service"
	"github.com/leshachaplin/eventrelay/internal/worker"
)

const (
	defaultAddr = ":8080"
	// responseMargin is added to the destination deadline for the server write timeout.
	responseMargin = 5 * time.Second
)

type LoadConfigFn func() (config.Config, error)

type App struct {
	cfg      config.Config
	logger   zerolog.Logger
	server   *appServer.Server
	waiter   waiter.Waiter
	ctx      context.Context
	cancelFn context.CancelFunc
}

func New(loadConfigFn LoadConfigFn) *App {
	ctx, cancelFn := context.WithCancel(context.Background())
	cfg, err := loadConfigFn()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.Mode == "" {
		cfg.Mode = config.ModeSync
	}
	cfg.Destinations = cfg.Destinations.WithDefaults()

	logger := NewZeroLogger(Level(cfg.LogLevel), cfg.LogFormat)

	w := waiter.NewWaiter(ctx, cancelFn)

	return &App{
		cfg:      cfg,
		logger:   logger,
		waiter:   w,
		ctx:      ctx,
		cancelFn: cancelFn,
	}
}

func (a *App) Start() {
	defer a.cancelFn()

	client := destination.NewClient(
		nil,
		a.cfg.Destinations.Timeout,
		a.logger.With().Str("component", "destination").Logger(),
	)

	pool := worker.New(a.ctx, a.cfg.Worker, a.logger.With().Str("WORKER", "DISPATCH").Logger())

	eventService := service.New(
		a.cfg.Destinations,
		client,
		pool,
		a.logger.With().Str("component", "service").Logger(),
	)
	handler := appServer.NewHandler(eventService, a.cfg.Mode, a.logger)

	a.server = appServer.New(handler, a.cfg.Destinations.Timeout+responseMargin)

	a.logDestinations()
	a.waitForServer(pool)

	if err := a.waiter.Wait(); err != nil {
		a.logger.Fatal().Err(err).Msg("App crash.")
	}
}

func (a *App) Stop() {
	a.cancelFn()
}

// waitForServer serves until shutdown, then drains the worker pool so that events
// accepted in background mode are dispatched before Start returns.
func (a *App) waitForServer(pool worker.WorkerPool) {
	a.waiter.Add(func(ctx context.Context) error {
		defer a.logger.Debug().Msg("server has been shutdown")

		group, gCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			defer a.logger.Debug().Msg("public server exited")
			a.logger.Info().Str("addr", a.cfg.Addr).Str("mode", string(a.cfg.Mode)).Msg("starting server")
			err := a.server.ServePublic(a.cfg.Addr)
			if err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})

		group.Go(func() error {
			<-gCtx.Done()
			a.logger.Debug().Msg("shutting down the server")
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			if err := a.server.ShutdownPublic(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("error while shutting down the server")
			}

			pool.GracefulStop()
			a.logger.Debug().Msg("worker pool drained")
			return nil
		})

		return group.Wait()
	})
}

func (a *App) logDestinations() {
	d := a.cfg.Destinations
	a.logger.Info().
		Bool(destination.MetaName, d.Meta.Enabled()).
		Bool(destination.AnalyticsName, d.Analytics.Enabled()).
		Bool(destination.AdsName, d.Ads.Enabled()).
		Dur("timeout", d.Timeout).
		Msg("destinations configured")
}
