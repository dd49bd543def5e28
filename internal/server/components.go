package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/screen-inventory-service/internal/config"
	"github.com/preston-bernstein/screen-inventory-service/internal/http/handlers"
	"github.com/preston-bernstein/screen-inventory-service/internal/logging"
	"github.com/preston-bernstein/screen-inventory-service/internal/metrics"
	"github.com/preston-bernstein/screen-inventory-service/internal/notify"
	"github.com/preston-bernstein/screen-inventory-service/internal/poller"
	"github.com/preston-bernstein/screen-inventory-service/internal/sources"
	"github.com/preston-bernstein/screen-inventory-service/internal/sweeper"
)

var (
	metricsSetup = metrics.Setup
	dialNotifier = func(cfg notify.Config, logger *slog.Logger, recorder *metrics.Recorder) (notifier, error) {
		return notify.Dial(cfg, logger, recorder)
	}
)

var (
	errSweeperIdle = errors.New("sweeper not running")
	errPollerIdle  = errors.New("feed poller has not refreshed successfully")
)

// loadRegistry reads the sources file. A missing file yields an empty registry so the service
// can run on pushed batches and local entries alone.
func loadRegistry(path string, logger *slog.Logger) (*sources.Registry, error) {
	if path == "" {
		return sources.New()
	}
	reg, err := sources.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Warn(logger, "sources file not found, polling disabled", "path", path)
		return sources.New()
	}
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	logging.Info(logger, "sources loaded", "path", path, logging.FieldCount, len(reg.Enabled()))
	return reg, nil
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	if cfg.Metrics.Pushes() {
		logging.Info(logger, "metrics push enabled", "endpoint", cfg.Metrics.OtlpEndpoint)
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

// buildNotifier dials the broker when one is configured. A broker that cannot be reached is
// logged and the service runs without notifications.
func buildNotifier(cfg config.NotifyConfig, logger *slog.Logger, recorder *metrics.Recorder) notifier {
	if !cfg.Enabled() {
		return nil
	}
	n, err := dialNotifier(notify.Config{
		URL:        cfg.URL,
		Exchange:   cfg.Exchange,
		RoutingKey: cfg.RoutingKey,
	}, logger, recorder)
	if err != nil {
		logging.Warn(logger, "inventory notifications disabled", "error", err)
		return nil
	}
	return n
}

// readiness requires a running sweeper and, when feeds are configured, a healthy poller.
func readiness(sweep func() sweeper.Status, poll func() poller.Status) handlers.ReadinessFunc {
	return func() error {
		if sweep != nil && !sweep().IsReady() {
			return errSweeperIdle
		}
		if poll != nil && !poll().IsReady() {
			return errPollerIdle
		}
		return nil
	}
}
