package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/screen-inventory-service/internal/poller"
	"github.com/preston-bernstein/screen-inventory-service/internal/providers"
	"github.com/preston-bernstein/screen-inventory-service/internal/store"
	"github.com/preston-bernstein/screen-inventory-service/internal/teststubs"
	"github.com/preston-bernstein/screen-inventory-service/internal/testutil"
)

const adminToken = "s3cret"

func adminRoutes(a *AdminHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(a.RequireToken)
		ar.Post("/screens", a.PutLocal)
		ar.Delete("/sources/{id}/screens", a.RemoveSource)
		ar.Post("/sources/{name}/enable", a.EnableSource)
		ar.Post("/inventory/clear", a.Clear)
	})
	return r
}

func adminRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+adminToken)
	return req
}

func TestAdminRequiresToken(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	h := adminRoutes(NewAdminHandler(newStore(t), nil, adminToken, logger))

	rr := testutil.Serve(h, http.MethodPost, "/admin/inventory/clear", nil)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodPost, "/admin/inventory/clear", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	testutil.AssertStatus(t, testutil.ServeRequest(h, req), http.StatusUnauthorized)

	if !strings.Contains(buf.String(), "admin unauthorized") {
		t.Fatalf("expected unauthorized attempts logged")
	}

	open := adminRoutes(NewAdminHandler(newStore(t), nil, "", nil))
	testutil.AssertStatus(t, testutil.ServeRequest(open, adminRequest(http.MethodPost, "/admin/inventory/clear", "")), http.StatusUnauthorized)
}

func TestAdminPutLocal(t *testing.T) {
	s := newStore(t)
	h := adminRoutes(NewAdminHandler(s, nil, adminToken, nil))

	body := `[{"id": "local-1", "name": "Lobby", "rating": 9}, {"name": "no id"}]`
	rr := testutil.ServeRequest(h, adminRequest(http.MethodPost, "/admin/screens", body))
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp map[string]int
	testutil.DecodeJSON(t, rr, &resp)
	if resp["stored"] != 1 {
		t.Fatalf("expected 1 stored, got %+v", resp)
	}
	sc, ok := s.Get("local-1")
	if !ok || sc.Source.External || sc.Source.ID != store.LocalSourceName || sc.Rating != 5 {
		t.Fatalf("unexpected local screen %+v", sc)
	}

	bad := testutil.ServeRequest(h, adminRequest(http.MethodPost, "/admin/screens", `{"id": 1}`))
	testutil.AssertStatus(t, bad, http.StatusBadRequest)
}

func TestAdminRemoveSourceAndClear(t *testing.T) {
	s := newStore(t)
	seed(t, s)
	h := adminRoutes(NewAdminHandler(s, nil, adminToken, nil))

	rr := testutil.ServeRequest(h, adminRequest(http.MethodDelete, "/admin/sources/vistar/screens", ""))
	testutil.AssertStatus(t, rr, http.StatusOK)
	if s.Len() != 2 {
		t.Fatalf("expected vistar screens removed, got %d left", s.Len())
	}

	rr = testutil.ServeRequest(h, adminRequest(http.MethodPost, "/admin/inventory/clear", ""))
	testutil.AssertStatus(t, rr, http.StatusOK)
	if ext, local := s.Counts(); ext != 0 || local != 1 {
		t.Fatalf("expected only local left, got ext=%d local=%d", ext, local)
	}

	testutil.AssertStatus(t, testutil.ServeRequest(h, adminRequest(http.MethodPost, "/admin/inventory/clear?scope=bogus", "")), http.StatusBadRequest)

	rr = testutil.ServeRequest(h, adminRequest(http.MethodPost, "/admin/inventory/clear?scope=all", ""))
	testutil.AssertStatus(t, rr, http.StatusOK)
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d", s.Len())
	}
}

func TestAdminEnableSource(t *testing.T) {
	src := &teststubs.StubSource{SourceName: "vistar", Err: &providers.FetchError{Source: "vistar", StatusCode: http.StatusUnauthorized}}
	p := poller.New([]providers.FeedSource{src}, newStore(t), nil, nil, 0)
	p.RefreshOnce(context.Background())
	if !p.Sources()[0].Disabled {
		t.Fatalf("expected source disabled after 401")
	}

	h := adminRoutes(NewAdminHandler(newStore(t), p, adminToken, nil))
	rr := testutil.ServeRequest(h, adminRequest(http.MethodPost, "/admin/sources/vistar/enable", ""))
	testutil.AssertStatus(t, rr, http.StatusOK)
	if p.Sources()[0].Disabled {
		t.Fatalf("expected source re-enabled")
	}

	missing := testutil.ServeRequest(h, adminRequest(http.MethodPost, "/admin/sources/nope/enable", ""))
	testutil.AssertStatus(t, missing, http.StatusNotFound)
}
