package main

import (
	"log/slog"

	"github.com/preston-bernstein/screen-inventory-service/internal/config"
	"github.com/preston-bernstein/screen-inventory-service/internal/logging"
)

var newFluentClient = func(cfg logging.FluentConfig) (fluentClient, error) {
	return logging.NewFluentClient(cfg)
}

// fluentClient is the part of *fluent.Fluent the process logger needs.
type fluentClient interface {
	logging.Poster
	Close() error
}

// buildLogger returns the process logger and a func that flushes the fluent forwarder, if any.
// An unreachable collector leaves console logging in place.
func buildLogger(cfg config.Config) (*slog.Logger, func()) {
	logCfg := logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.ServiceName,
		Version: cfg.Version,
	}
	if !cfg.Log.Fluent.Enabled() {
		return logging.NewLogger(logCfg), func() {}
	}

	client, err := newFluentClient(logging.FluentConfig{
		Host:      cfg.Log.Fluent.Host,
		Port:      cfg.Log.Fluent.Port,
		TagPrefix: cfg.Log.Fluent.TagPrefix,
		Level:     cfg.Log.Level,
	})
	if err != nil {
		logger := logging.NewLogger(logCfg)
		logging.Warn(logger, "fluent forwarding disabled", "error", err)
		return logger, func() {}
	}

	logCfg.Forward = logging.NewFluentHandler(client, logging.ParseLevel(cfg.Log.Level))
	logger := logging.NewLogger(logCfg)
	return logger, func() {
		if err := client.Close(); err != nil {
			logging.Warn(logger, "fluent close failed", "error", err)
		}
	}
}
