package testutil

import (
	"context"

	"github.com/preston-bernstein/screen-inventory-service/internal/metrics"
)

// NopShutdown stands in for a telemetry provider shutdown.
func NopShutdown(context.Context) error { return nil }

// NewRecorderWithShutdown returns an in-memory recorder paired with NopShutdown.
func NewRecorderWithShutdown() (*metrics.Recorder, func(context.Context) error) {
	return metrics.NewRecorder(), NopShutdown
}
