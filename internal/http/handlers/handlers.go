package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/screen-inventory-service/internal/domain/screens"
	"github.com/preston-bernstein/screen-inventory-service/internal/logging"
	"github.com/preston-bernstein/screen-inventory-service/internal/poller"
	"github.com/preston-bernstein/screen-inventory-service/internal/providers/ssp"
	"github.com/preston-bernstein/screen-inventory-service/internal/store"
)

// Origin filter values accepted by GET /screens.
const (
	OriginAll      = "all"
	OriginExternal = "external"
	OriginLocal    = "local"
)

// Inventory is the read side of the aggregation store.
type Inventory interface {
	All() []screens.Screen
	ByOrigin(external bool) []screens.Screen
	BySource(sourceID string) []screens.Screen
	Get(id string) (screens.Screen, bool)
	Stats() store.Stats
}

// Ingester merges a decoded batch into the store.
type Ingester interface {
	AddInventory(ctx context.Context, records []ssp.Record) (store.BatchResult, error)
}

// ReadinessFunc returns nil when the service can take traffic.
type ReadinessFunc func() error

// Deps are the collaborators of Handler. Only Inventory is required.
type Deps struct {
	Inventory Inventory
	Ingester  Ingester
	Ready     ReadinessFunc
	Sources   func() []poller.SourceStatus
	Logger    *slog.Logger
}

// Handler serves the public read and ingest routes.
type Handler struct {
	inv      Inventory
	ingester Ingester
	ready    ReadinessFunc
	sources  func() []poller.SourceStatus
	logger   *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		inv:      deps.Inventory,
		ingester: deps.Ingester,
		ready:    deps.Ready,
		sources:  deps.Sources,
		logger:   deps.Logger,
	}
}

// ScreensResponse is the body of GET /screens.
type ScreensResponse struct {
	Count   int              `json:"count"`
	Screens []screens.Screen `json:"screens"`
}

// SourcesResponse is the body of GET /sources.
type SourcesResponse struct {
	Sources []poller.SourceStatus `json:"sources"`
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes readiness checks).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.ready == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	if err := h.ready(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, err.Error(), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
}

// Screens lists the inventory, optionally filtered by origin and source id.
func (h *Handler) Screens(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin := strings.ToLower(strings.TrimSpace(q.Get("origin")))
	source := strings.TrimSpace(q.Get("source"))

	var list []screens.Screen
	switch {
	case source != "":
		list = h.inv.BySource(source)
	case origin == OriginExternal:
		list = h.inv.ByOrigin(true)
	case origin == OriginLocal:
		list = h.inv.ByOrigin(false)
	default:
		list = h.inv.All()
	}

	switch origin {
	case "", OriginAll:
	case OriginExternal, OriginLocal:
		if source != "" {
			list = keepOrigin(list, origin == OriginExternal)
		}
	default:
		writeError(w, r, http.StatusBadRequest, "invalid origin (expected external, local or all)", h.logger)
		return
	}

	if list == nil {
		list = []screens.Screen{}
	}
	logging.Debug(loggerFromContext(r, h.logger), "served screens",
		"origin", origin,
		logging.FieldSource, source,
		logging.FieldCount, len(list),
	)
	writeJSON(w, http.StatusOK, ScreensResponse{Count: len(list), Screens: list}, h.logger)
}

// ScreenByID returns a specific screen if present.
func (h *Handler) ScreenByID(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil || id == "" || strings.ContainsAny(id, " \t/") {
		writeError(w, r, http.StatusBadRequest, "invalid screen id", h.logger)
		return
	}

	sc, ok := h.inv.Get(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "screen not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, sc, h.logger)
}

// Stats returns inventory counts.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.inv.Stats(), h.logger)
}

// Sources lists the per-source refresh state.
func (h *Handler) Sources(w http.ResponseWriter, r *http.Request) {
	list := []poller.SourceStatus{}
	if h.sources != nil {
		list = append(list, h.sources()...)
	}
	writeJSON(w, http.StatusOK, SourcesResponse{Sources: list}, h.logger)
}

// NotFound is the JSON fallback for unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found", h.logger)
}

// MethodNotAllowed is the JSON fallback for known routes hit with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", h.logger)
}

func keepOrigin(list []screens.Screen, external bool) []screens.Screen {
	out := list[:0:0]
	for _, sc := range list {
		if sc.Source.External == external {
			out = append(out, sc)
		}
	}
	return out
}
