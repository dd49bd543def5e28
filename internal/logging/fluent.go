package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Poster is the subset of *fluent.Fluent used for forwarding.
type Poster interface {
	Post(tag string, message interface{}) error
}

// FluentConfig locates the fluentd/fluent-bit forward input.
type FluentConfig struct {
	Host      string
	Port      int
	TagPrefix string
	Level     string
}

// NewFluentClient dials a fluent forward endpoint. The client posts asynchronously so a
// missing collector never blocks logging.
func NewFluentClient(cfg FluentConfig) (*fluent.Fluent, error) {
	client, err := fluent.New(fluent.Config{
		FluentHost: cfg.Host,
		FluentPort: cfg.Port,
		TagPrefix:  cfg.TagPrefix,
		Async:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("fluent client: %w", err)
	}
	return client, nil
}

// FluentHandler is a slog.Handler that posts redacted records to fluent, tagged by level.
type FluentHandler struct {
	client Poster
	level  slog.Leveler
	attrs  map[string]any
	prefix string
}

// NewFluentHandler wraps a fluent client. Records below level are dropped.
func NewFluentHandler(client Poster, level slog.Leveler) *FluentHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &FluentHandler{client: client, level: level, attrs: map[string]any{}}
}

func (h *FluentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.client != nil && level >= h.level.Level()
}

func (h *FluentHandler) Handle(_ context.Context, r slog.Record) error {
	data := make(map[string]any, len(h.attrs)+r.NumAttrs()+3)
	for k, v := range h.attrs {
		data[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(data, h.prefix, a)
		return true
	})
	data = RedactFields(data)
	data["level"] = strings.ToLower(r.Level.String())
	data["message"] = truncate(r.Message)
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	data["timestamp"] = ts.UTC().Format(time.RFC3339Nano)

	return h.client.Post(strings.ToLower(r.Level.String()), data)
}

func (h *FluentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		addAttr(next.attrs, h.prefix, a)
	}
	return next
}

func (h *FluentHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.prefix = h.prefix + name + "."
	return next
}

func (h *FluentHandler) clone() *FluentHandler {
	attrs := make(map[string]any, len(h.attrs))
	for k, v := range h.attrs {
		attrs[k] = v
	}
	return &FluentHandler{client: h.client, level: h.level, attrs: attrs, prefix: h.prefix}
}

func addAttr(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			addAttr(dst, p, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	val := v.Any()
	if err, ok := val.(error); ok {
		val = err.Error()
	}
	if d, ok := val.(time.Duration); ok {
		val = d.String()
	}
	if t, ok := val.(time.Time); ok {
		val = t.UTC().Format(time.RFC3339Nano)
	}
	dst[prefix+a.Key] = val
}
