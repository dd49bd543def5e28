package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/screen-inventory-service/internal/domain/screens"
	"github.com/preston-bernstein/screen-inventory-service/internal/http/requestutil"
	"github.com/preston-bernstein/screen-inventory-service/internal/logging"
)

// Clear scopes accepted by POST /admin/inventory/clear.
const (
	ScopeExternal = "external"
	ScopeAll      = "all"
)

// InventoryAdmin is the mutation side of the store exposed to operators.
type InventoryAdmin interface {
	PutLocal(items ...screens.Screen) int
	RemoveBySource(sourceID string) int
	ClearExternalOnly() int
	ClearAll() int
}

// SourceEnabler re-enables a feed source disabled after an authentication failure.
type SourceEnabler interface {
	Enable(name string) bool
}

// AdminHandler exposes operator endpoints guarded by a bearer token.
type AdminHandler struct {
	inv     InventoryAdmin
	sources SourceEnabler
	token   string
	logger  *slog.Logger
}

// NewAdminHandler constructs an AdminHandler. An empty token rejects every request.
func NewAdminHandler(inv InventoryAdmin, sources SourceEnabler, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		inv:     inv,
		sources: sources,
		token:   token,
		logger:  logger,
	}
}

// RequireToken rejects requests without the configured bearer token.
func (h *AdminHandler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.authorize(r) {
			logging.Warn(h.logger, "admin unauthorized",
				slog.String(logging.FieldPath, r.URL.Path),
				slog.String("client_ip", requestutil.ClientIP(r)),
			)
			writeError(w, r, http.StatusUnauthorized, "unauthorized", h.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PutLocal stores locally-operated screens from a JSON array body.
func (h *AdminHandler) PutLocal(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	var items []screens.Screen
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIngestBytes))
	if err := dec.Decode(&items); err != nil {
		writeErrorDetail(w, r, http.StatusBadRequest, "invalid JSON", err.Error(), logger)
		return
	}
	stored := h.inv.PutLocal(items...)
	logging.Info(logger, "admin local screens stored", slog.Int(logging.FieldCount, stored))
	writeJSON(w, http.StatusOK, map[string]int{"stored": stored}, logger)
}

// RemoveSource drops every screen from one source.
func (h *AdminHandler) RemoveSource(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "invalid source id", logger)
		return
	}
	removed := h.inv.RemoveBySource(id)
	logging.Info(logger, "admin source screens removed",
		slog.String(logging.FieldSource, id),
		slog.Int(logging.FieldCount, removed),
	)
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed}, logger)
}

// Clear removes external screens (scope=external, the default) or everything (scope=all).
func (h *AdminHandler) Clear(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	scope := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("scope")))
	var removed int
	switch scope {
	case "", ScopeExternal:
		scope = ScopeExternal
		removed = h.inv.ClearExternalOnly()
	case ScopeAll:
		removed = h.inv.ClearAll()
	default:
		writeError(w, r, http.StatusBadRequest, "invalid scope (expected external or all)", logger)
		return
	}
	logging.Info(logger, "admin inventory cleared", slog.String("scope", scope), slog.Int(logging.FieldCount, removed))
	writeJSON(w, http.StatusOK, map[string]any{"scope": scope, "removed": removed}, logger)
}

// EnableSource re-enables a disabled feed source.
func (h *AdminHandler) EnableSource(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	name := chi.URLParam(r, "name")
	if h.sources == nil || !h.sources.Enable(name) {
		writeError(w, r, http.StatusNotFound, "source not found", logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"source": name, "status": "enabled"}, logger)
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	got := r.Header.Get("Authorization")
	want := "Bearer " + h.token
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
