package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/screen-inventory-service/internal/poller"
	"github.com/preston-bernstein/screen-inventory-service/internal/providers/ssp"
	"github.com/preston-bernstein/screen-inventory-service/internal/store"
	"github.com/preston-bernstein/screen-inventory-service/internal/testutil"
)

var epoch = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(store.Options{Now: testutil.NowAt(epoch)})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *store.Store) {
	t.Helper()
	records := []ssp.Record{
		testutil.SampleRecord("vistar", "1", 10),
		testutil.SampleRecord("vistar", "2", 12),
		testutil.SampleRecord("other", "9", 3),
	}
	if _, err := s.AddInventory(context.Background(), records); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s.PutLocal(testutil.LocalScreen("local-1", epoch))
}

func routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Get("/screens", h.Screens)
	r.Get("/screens/{id}", h.ScreenByID)
	r.Get("/stats", h.Stats)
	r.Get("/sources", h.Sources)
	r.Post("/ingest", h.Ingest)
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
	return r
}

func TestHealth(t *testing.T) {
	h := NewHandler(Deps{Inventory: newStore(t)})

	rr := testutil.Serve(routes(h), http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func TestHealthShuttingDownReturnsServiceUnavailable(t *testing.T) {
	h := NewHandler(Deps{Inventory: newStore(t)})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	rr := testutil.ServeRequest(http.HandlerFunc(h.Health), req.WithContext(ctx))

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp errorBody
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Error != "shutting down" {
		t.Fatalf("unexpected error %q", resp.Error)
	}
}

func TestReadyReflectsReadinessFunc(t *testing.T) {
	var readyErr error
	h := NewHandler(Deps{Inventory: newStore(t), Ready: func() error { return readyErr }})

	testutil.AssertStatus(t, testutil.Serve(routes(h), http.MethodGet, "/ready", nil), http.StatusOK)

	readyErr = errors.New("sweeper not running")
	rr := testutil.Serve(routes(h), http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp errorBody
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Error != "sweeper not running" {
		t.Fatalf("unexpected readiness error %q", resp.Error)
	}

	noCheck := NewHandler(Deps{Inventory: newStore(t)})
	testutil.AssertStatus(t, testutil.Serve(routes(noCheck), http.MethodGet, "/ready", nil), http.StatusOK)
}

func TestScreensFilters(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	h := routes(NewHandler(Deps{Inventory: s}))

	cases := []struct {
		path string
		want int
	}{
		{"/screens", 4},
		{"/screens?origin=all", 4},
		{"/screens?origin=external", 3},
		{"/screens?origin=LOCAL", 1},
		{"/screens?source=vistar", 2},
		{"/screens?source=vistar&origin=local", 0},
		{"/screens?source=local&origin=local", 1},
		{"/screens?source=missing", 0},
	}
	for _, tc := range cases {
		rr := testutil.Serve(h, http.MethodGet, tc.path, nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		var resp ScreensResponse
		testutil.DecodeJSON(t, rr, &resp)
		if resp.Count != tc.want || len(resp.Screens) != tc.want {
			t.Fatalf("%s: expected %d screens, got %d", tc.path, tc.want, resp.Count)
		}
	}
}

func TestScreensEmptyListIsArray(t *testing.T) {
	rr := testutil.Serve(routes(NewHandler(Deps{Inventory: newStore(t)})), http.MethodGet, "/screens", nil)
	if !strings.Contains(rr.Body.String(), `"screens":[]`) {
		t.Fatalf("expected empty array, got %s", rr.Body.String())
	}
}

func TestScreensRejectsUnknownOrigin(t *testing.T) {
	rr := testutil.Serve(routes(NewHandler(Deps{Inventory: newStore(t)})), http.MethodGet, "/screens?origin=partner", nil)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestScreenByID(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	h := routes(NewHandler(Deps{Inventory: s}))

	rr := testutil.Serve(h, http.MethodGet, "/screens/ssp-vistar-1", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var body struct {
		ID     string `json:"id"`
		Source struct {
			ID       string `json:"id"`
			External bool   `json:"external"`
		} `json:"source"`
	}
	testutil.DecodeJSON(t, rr, &body)
	if body.ID != "ssp-vistar-1" || body.Source.ID != "vistar" || !body.Source.External {
		t.Fatalf("unexpected screen %+v", body)
	}

	testutil.AssertStatus(t, testutil.Serve(h, http.MethodGet, "/screens/ssp-vistar-404", nil), http.StatusNotFound)
	testutil.AssertStatus(t, testutil.Serve(h, http.MethodGet, "/screens/bad%20id", nil), http.StatusBadRequest)
}

func TestStats(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	rr := testutil.Serve(routes(NewHandler(Deps{Inventory: s})), http.MethodGet, "/stats", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var stats store.Stats
	testutil.DecodeJSON(t, rr, &stats)
	if stats.Total != 4 || stats.External != 3 || stats.Local != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestSourcesListsPollerState(t *testing.T) {
	h := NewHandler(Deps{
		Inventory: newStore(t),
		Sources: func() []poller.SourceStatus {
			return []poller.SourceStatus{{Name: "vistar", Disabled: true, ConsecutiveFailures: 1}}
		},
	})
	rr := testutil.Serve(routes(h), http.MethodGet, "/sources", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var resp SourcesResponse
	testutil.DecodeJSON(t, rr, &resp)
	if len(resp.Sources) != 1 || !resp.Sources[0].Disabled {
		t.Fatalf("unexpected sources %+v", resp)
	}

	empty := testutil.Serve(routes(NewHandler(Deps{Inventory: newStore(t)})), http.MethodGet, "/sources", nil)
	if !strings.Contains(empty.Body.String(), `"sources":[]`) {
		t.Fatalf("expected empty array, got %s", empty.Body.String())
	}
}

func TestUnknownRoutesReturnJSON(t *testing.T) {
	h := routes(NewHandler(Deps{Inventory: newStore(t)}))

	rr := testutil.Serve(h, http.MethodGet, "/campaigns", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected JSON 404")
	}

	testutil.AssertStatus(t, testutil.Serve(h, http.MethodDelete, "/screens", nil), http.StatusMethodNotAllowed)
}
