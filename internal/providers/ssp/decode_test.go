package ssp

import (
	"errors"
	"testing"
)

func TestDecodeBatchArray(t *testing.T) {
	body := []byte(`[
		{"source_id":"A","venue":{"id":"1","name":"Mall X","types":["retail.malls"]},
		 "geo":{"lat":51.5,"lng":-0.12},"pricing":{"floor_price":12.5,"currency":"EUR"}},
		{"source_id":"A","venue":{"id":"2"}}
	]`)

	records, err := DecodeBatch(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Geo == nil || records[0].Geo.Lat == nil || *records[0].Geo.Lat != 51.5 {
		t.Fatalf("expected latitude decoded, got %+v", records[0].Geo)
	}
	if records[1].Geo != nil || records[1].Pricing != nil {
		t.Fatalf("expected missing sections to stay nil, got %+v", records[1])
	}
}

func TestDecodeBatchEnvelopeInheritsSourceID(t *testing.T) {
	body := []byte(`{"source_id":"broadsign","records":[{"venue":{"id":"9"}},{"source_id":"other","venue":{"id":"3"}}]}`)

	records, err := DecodeBatch(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records[0].SourceID != "broadsign" {
		t.Fatalf("expected inherited source id, got %q", records[0].SourceID)
	}
	if records[1].SourceID != "other" {
		t.Fatalf("expected explicit source id kept, got %q", records[1].SourceID)
	}
}

func TestDecodeBatchRejectsWrongShape(t *testing.T) {
	cases := map[string]string{
		"scalar":         `42`,
		"no records":     `{"source_id":"A"}`,
		"records object": `{"records":{"venue":{"id":"1"}}}`,
	}
	for name, body := range cases {
		if _, err := DecodeBatch([]byte(body)); !errors.Is(err, ErrInvalidPayload) {
			t.Fatalf("%s: expected ErrInvalidPayload, got %v", name, err)
		}
	}
}

func TestDecodeBatchIsolatesBadRecords(t *testing.T) {
	cases := map[string]string{
		"string lat":          `{"geo":{"lat":"north"}}`,
		"float width":         `{"screen":{"width":19.5}}`,
		"bad timestamp":       `{"timestamp":"yesterday"}`,
		"impressions too big": `{"audience":{"daily_impressions":1e20}}`,
		"not an object":       `7`,
	}
	for name, bad := range cases {
		body := []byte(`{"source_id":"A","records":[{"venue":{"id":"1"}},` + bad + `,{"venue":{"id":"3"}}]}`)
		records, err := DecodeBatch(body)
		if err != nil {
			t.Fatalf("%s: expected batch to decode, got %v", name, err)
		}
		if len(records) != 3 {
			t.Fatalf("%s: expected 3 records, got %d", name, len(records))
		}
		if records[0].DecodeErr != nil || records[2].DecodeErr != nil {
			t.Fatalf("%s: expected neighbours intact, got %v / %v", name, records[0].DecodeErr, records[2].DecodeErr)
		}
		if !errors.Is(records[1].DecodeErr, ErrInvalidRecord) {
			t.Fatalf("%s: expected ErrInvalidRecord, got %v", name, records[1].DecodeErr)
		}
		if records[1].SourceID != "A" {
			t.Fatalf("%s: expected failed record attributed to envelope source, got %q", name, records[1].SourceID)
		}
	}
}

func TestDecodeBatchSalvagesIdentifiers(t *testing.T) {
	records, err := DecodeBatch([]byte(`[{"source_id":"B","venue":{"id":"7"},"geo":{"lat":"north"}}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records[0].DecodeErr == nil {
		t.Fatalf("expected record error")
	}
	if records[0].SourceID != "B" || records[0].VenueID() != "7" {
		t.Fatalf("expected identifiers salvaged, got %q/%q", records[0].SourceID, records[0].VenueID())
	}
}

func TestDecodeBatchMalformedJSON(t *testing.T) {
	_, err := DecodeBatch([]byte(`[{`))
	if err == nil || errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestVenueIDNilSafe(t *testing.T) {
	if got := (Record{}).VenueID(); got != "" {
		t.Fatalf("expected empty venue id, got %q", got)
	}
	if got := (Record{Venue: &Venue{ID: "v"}}).VenueID(); got != "v" {
		t.Fatalf("expected venue id, got %q", got)
	}
}
