package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/preston-bernstein/screen-inventory-service/internal/adapter"
	"github.com/preston-bernstein/screen-inventory-service/internal/config"
	httpserver "github.com/preston-bernstein/screen-inventory-service/internal/http"
	"github.com/preston-bernstein/screen-inventory-service/internal/http/handlers"
	"github.com/preston-bernstein/screen-inventory-service/internal/logging"
	"github.com/preston-bernstein/screen-inventory-service/internal/metrics"
	"github.com/preston-bernstein/screen-inventory-service/internal/poller"
	"github.com/preston-bernstein/screen-inventory-service/internal/providers"
	"github.com/preston-bernstein/screen-inventory-service/internal/sources"
	"github.com/preston-bernstein/screen-inventory-service/internal/store"
	"github.com/preston-bernstein/screen-inventory-service/internal/sweeper"
)

// Server owns the inventory store and every component feeding or serving it.
type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	store         *store.Store
	feeds         []providers.FeedSource
	httpServer    httpServer
	metricsServer httpServer
	poller        loop
	sweeper       loop
	notifier      notifier
	metricsStop   func(context.Context) error

	notifyCancel func()
	notifyDone   chan struct{}
	shutdownOnce sync.Once
}

// New wires the service from cfg: sources registry, store, sweeper, poller, notifications and
// the HTTP router.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	registry, err := loadRegistry(cfg.Inventory.SourcesFile, logger)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: cfg.Inventory.FetchTimeout}
	feeds, err := sources.BuildFeeds(registry, client, logger)
	if err != nil {
		return nil, err
	}
	return newServerWithFeeds(cfg, logger, registry, feeds, nil), nil
}

func newServerWithFeeds(cfg config.Config, logger *slog.Logger, names adapter.SourceNamer, feeds []providers.FeedSource, recorder *metrics.Recorder) *Server {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	inventory := store.New(store.Options{
		Names:           names,
		FreshnessWindow: cfg.Inventory.FreshnessWindow,
		Logger:          logger,
		Metrics:         recorder,
	})
	if err := recorder.ObserveInventory(inventory.Counts); err != nil {
		logging.Warn(logger, "inventory gauge not registered", "error", err)
	}

	sw := sweeper.New(inventory, logger, recorder, cfg.Inventory.SweepInterval)
	plr := poller.New(feeds, inventory, logger, recorder, cfg.Inventory.PollInterval)

	var pollStatus func() poller.Status
	if len(feeds) > 0 {
		pollStatus = plr.Status
	}
	handler := handlers.NewHandler(handlers.Deps{
		Inventory: inventory,
		Ingester:  inventory,
		Ready:     readiness(sw.Status, pollStatus),
		Sources:   plr.Sources,
		Logger:    logger,
	})
	var admin *handlers.AdminHandler
	if cfg.AdminToken != "" {
		admin = handlers.NewAdminHandler(inventory, plr, cfg.AdminToken, logger)
	}

	srv := &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		store:         inventory,
		feeds:         feeds,
		httpServer:    buildHTTPServer(cfg, httpserver.NewRouter(handler, admin, logger, recorder)),
		metricsServer: metricsSrv,
		poller:        plr,
		sweeper:       sw,
		metricsStop:   metricsShutdown,
	}
	srv.notifier = buildNotifier(cfg.Notify, logger, recorder)
	return srv
}

func buildHTTPServer(cfg config.Config, handler http.Handler) httpServer {
	return netHTTPServer{srv: &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}}
}

// Run starts every component, then waits for ctx cancellation to shut down gracefully.
// stop is called when the HTTP server fails to listen.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startNotifier(ctx)
	s.startServer(stop)
	s.sweeper.Start(ctx)
	s.poller.Start(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer("http", s.httpServer, s.logger, func(error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

// startNotifier consumes store events on a dedicated goroutine so broker I/O never runs under
// a store mutation.
func (s *Server) startNotifier(ctx context.Context) {
	if s.notifier == nil || s.store == nil {
		return
	}
	events, cancel := s.store.SubscribeChan(eventBuffer)
	s.notifyCancel = cancel
	s.notifyDone = make(chan struct{})
	go func() {
		defer close(s.notifyDone)
		s.notifier.Run(context.WithoutCancel(ctx), events)
	}()
}

// gracefulShutdown stops intake first, then the background loops, then the store and the
// sinks that observe it.
func (s *Server) gracefulShutdown() {
	s.shutdownOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownDeadline())
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error(s.logger, "graceful shutdown failed", err)
		}
		if s.poller != nil {
			if err := s.poller.Stop(shutdownCtx); err != nil {
				logging.Error(s.logger, "failed to stop poller", err)
			}
		}
		if s.sweeper != nil {
			if err := s.sweeper.Stop(shutdownCtx); err != nil {
				logging.Error(s.logger, "failed to stop sweeper", err)
			}
		}
		for _, feed := range s.feeds {
			if c, ok := feed.(closer); ok {
				c.Close()
			}
		}

		if s.notifyCancel != nil {
			s.notifyCancel()
		}
		if s.store != nil {
			_ = s.store.Close()
		}
		s.stopNotifier(shutdownCtx)

		if s.metricsStop != nil {
			if err := s.metricsStop(shutdownCtx); err != nil {
				logging.Warn(s.logger, "metrics shutdown failed", "error", err)
			}
		}
		if s.metricsServer != nil {
			if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
				logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
			}
		}

		logging.Info(s.logger, "shutdown complete")
	})
}

func (s *Server) stopNotifier(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	if s.notifyDone != nil {
		select {
		case <-s.notifyDone:
		case <-ctx.Done():
			logging.Warn(s.logger, "notifier did not drain before shutdown deadline")
		}
	}
	if err := s.notifier.Close(); err != nil {
		logging.Warn(s.logger, "notifier close failed", "error", err)
	}
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, name+" server starting", slog.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}

// shutdownDeadline reports the effective shutdown timeout.
func (s *Server) shutdownDeadline() time.Duration {
	if s.cfg.ShutdownTimeout > 0 {
		return s.cfg.ShutdownTimeout
	}
	return defaultShutdownTimeout
}
