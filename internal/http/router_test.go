package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/preston-bernstein/screen-inventory-service/internal/http/handlers"
	"github.com/preston-bernstein/screen-inventory-service/internal/store"
	"github.com/preston-bernstein/screen-inventory-service/internal/testutil"
)

func newRouter(t *testing.T, withAdmin bool) (http.Handler, *store.Store) {
	t.Helper()
	s := store.New(store.Options{})
	t.Cleanup(func() { _ = s.Close() })
	h := handlers.NewHandler(handlers.Deps{Inventory: s, Ingester: s})
	var admin *handlers.AdminHandler
	if withAdmin {
		admin = handlers.NewAdminHandler(s, nil, "token", nil)
	}
	logger, _ := testutil.NewBufferLogger()
	return NewRouter(h, admin, logger, nil), s
}

func TestRouterRoutesKnownPaths(t *testing.T) {
	router, _ := newRouter(t, false)

	cases := map[string]int{
		"/health":       http.StatusOK,
		"/ready":        http.StatusOK,
		"/screens":      http.StatusOK,
		"/stats":        http.StatusOK,
		"/sources":      http.StatusOK,
		"/screens/none": http.StatusNotFound,
	}

	for path, expected := range cases {
		rr := testutil.Serve(router, http.MethodGet, path, nil)
		if rr.Code != expected {
			t.Fatalf("route %s expected status %d, got %d", path, expected, rr.Code)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("route %s missing request id header", path)
		}
	}
}

func TestRouterIngestThenRead(t *testing.T) {
	router, s := newRouter(t, false)

	rr := testutil.Serve(router, http.MethodPost, "/ingest", strings.NewReader(`[{"source_id": "A", "venue": {"id": "1"}}]`))
	testutil.AssertStatus(t, rr, http.StatusOK)
	if _, ok := s.Get("ssp-A-1"); !ok {
		t.Fatalf("expected ingested screen stored")
	}
	testutil.AssertStatus(t, testutil.Serve(router, http.MethodGet, "/screens/ssp-A-1", nil), http.StatusOK)
}

func TestRouterUnknownRouteReturns404(t *testing.T) {
	router, _ := newRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rr := testutil.ServeRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestRouterAdminMountedOnlyWhenConfigured(t *testing.T) {
	without, _ := newRouter(t, false)
	testutil.AssertStatus(t, testutil.Serve(without, http.MethodPost, "/admin/inventory/clear", nil), http.StatusNotFound)

	with, _ := newRouter(t, true)
	testutil.AssertStatus(t, testutil.Serve(with, http.MethodPost, "/admin/inventory/clear", nil), http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodPost, "/admin/inventory/clear", nil)
	req.Header.Set("Authorization", "Bearer token")
	testutil.AssertStatus(t, testutil.ServeRequest(with, req), http.StatusOK)
}
