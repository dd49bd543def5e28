package testutil

import (
	"bytes"
	"log/slog"

	"github.com/preston-bernstein/screen-inventory-service/internal/logging"
)

// NewBufferLogger returns a debug-level text logger writing to the returned buffer. It goes
// through logging.NewLogger so tests see records after redaction, as production sinks do.
func NewBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.Config{
		Level:  "debug",
		Format: logging.FormatText,
		Writer: &buf,
	})
	return logger, &buf
}
