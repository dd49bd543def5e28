package testutil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/screen-inventory-service/internal/validation"
)

func TestClockHelpers(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := NowAt(now)(); !got.Equal(now) {
		t.Fatalf("expected fixed time, got %v", got)
	}
	if MustParseRFC3339(now.Format(time.RFC3339)) != now {
		t.Fatalf("expected parse round trip")
	}

	clock := NewManualClock(now)
	clock.Advance(time.Hour)
	if got := clock.Now(); !got.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected advanced clock, got %v", got)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on invalid RFC3339")
		}
	}()
	MustParseRFC3339("not-a-time")
}

func TestFixturesValidate(t *testing.T) {
	if res := validation.Validate(SampleRecord("s", "v", 12)); !res.Valid || len(res.Warnings) != 0 {
		t.Fatalf("expected sample record clean, got %v %v", res.ErrorMessages(), res.WarningMessages())
	}
	if res := validation.Validate(OutOfRangeRecord()); len(res.Errors) != 2 {
		t.Fatalf("expected two errors, got %v", res.ErrorMessages())
	}
	if res := validation.Validate(SparseRecord("s", "v")); !res.Valid || len(res.Warnings) == 0 {
		t.Fatalf("expected sparse record valid with warnings, got %v", res.ErrorMessages())
	}
	local := LocalScreen("l1", time.Unix(0, 0))
	if local.ID != "l1" || local.Source.External {
		t.Fatalf("unexpected local fixture %+v", local)
	}
}

func TestServeHelpers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	rr := Serve(handler, http.MethodPost, "/test", strings.NewReader("{}"))
	AssertStatus(t, rr, http.StatusCreated)
	var body map[string]bool
	DecodeJSON(t, rr, &body)
	if !body["ok"] {
		t.Fatalf("expected ok=true")
	}

	req := httptest.NewRequest(http.MethodGet, "/req", nil)
	rr2 := ServeRequest(handler, req)
	AssertStatus(t, rr2, http.StatusCreated)
}

func TestBufferLoggerCaptures(t *testing.T) {
	logger, buf := NewBufferLogger()
	logger.Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("expected captured log line")
	}
	rec, shutdown := NewRecorderWithShutdown()
	if rec == nil || shutdown(context.Background()) != nil {
		t.Fatalf("expected recorder and no-op shutdown")
	}
}

func TestStubLoopCountsCalls(t *testing.T) {
	l := &StubLoop{Err: errors.New("stop failed")}
	l.Start(context.Background())
	if err := l.Stop(context.Background()); err == nil {
		t.Fatalf("expected configured stop error")
	}
	if start, stop := l.Calls(); start != 1 || stop != 1 {
		t.Fatalf("expected one start and one stop, got %d/%d", start, stop)
	}
}
