package fixture

import (
	"context"
	"testing"
	"time"
)

func TestFetchBatchReturnsDeterministicRecords(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 12, 0, 30, 0, time.UTC)
	s := New("")
	s.now = func() time.Time { return fixed }

	records, err := s.FetchBatch(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.Name() != DefaultSourceID {
		t.Fatalf("expected default source id, got %s", s.Name())
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.SourceID != DefaultSourceID || first.VenueID() != "berlin-hbf-01" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.Timestamp == nil || !first.Timestamp.Equal(fixed.Truncate(time.Minute)) {
		t.Fatalf("unexpected timestamp %v", first.Timestamp)
	}

	again, _ := s.FetchBatch(context.Background())
	if again[1].VenueID() != records[1].VenueID() || *again[1].Pricing.FloorPrice != *records[1].Pricing.FloorPrice {
		t.Fatalf("expected identical batches across fetches")
	}
}

func TestFetchBatchUsesConfiguredSourceID(t *testing.T) {
	records, err := New("demo").FetchBatch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range records {
		if r.SourceID != "demo" {
			t.Fatalf("expected source id demo, got %s", r.SourceID)
		}
	}
}

func TestFetchBatchHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New("demo").FetchBatch(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}
