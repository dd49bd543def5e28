package screens

import (
	"reflect"
	"testing"
)

func TestScreenJSONTags(t *testing.T) {
	screenType := reflect.TypeOf(Screen{})
	fields := map[string]string{
		"ID":             "id",
		"Price":          "price",
		"Available":      "available",
		"Coordinates":    "coordinates",
		"LocationDetail": "locationDetail",
		"OperatingHours": "operatingHours",
		"Source":         "source",
	}
	for name, want := range fields {
		f, ok := screenType.FieldByName(name)
		if !ok {
			t.Fatalf("missing field %s", name)
		}
		if got := f.Tag.Get("json"); got != want {
			t.Fatalf("field %s: expected tag %q got %q", name, want, got)
		}
	}
}

func TestCoordinatesValid(t *testing.T) {
	cases := []struct {
		c    Coordinates
		want bool
	}{
		{UnknownCoordinates, true},
		{Coordinates{Lat: 12, Lng: 3}, false},
		{Coordinates{Lat: 51.5, Lng: -0.12, Known: true}, true},
		{Coordinates{Lat: 95, Lng: 0, Known: true}, false},
		{Coordinates{Lat: 0, Lng: -181, Known: true}, false},
	}
	for _, tc := range cases {
		if got := tc.c.Valid(); got != tc.want {
			t.Fatalf("%+v: expected %v got %v", tc.c, tc.want, got)
		}
	}
}

func TestClampRating(t *testing.T) {
	if got := ClampRating(0.2); got != MinRating {
		t.Fatalf("expected clamp to min, got %v", got)
	}
	if got := ClampRating(7); got != MaxRating {
		t.Fatalf("expected clamp to max, got %v", got)
	}
	if got := ClampRating(3.8); got != 3.8 {
		t.Fatalf("expected value preserved, got %v", got)
	}
}

func TestCategoryByIDFallsBackToGeneral(t *testing.T) {
	if got := CategoryByID("retail"); got.ID != CategoryRetail || got.Label == "" {
		t.Fatalf("unexpected category %+v", got)
	}
	if got := CategoryByID("casino"); got.ID != CategoryGeneral {
		t.Fatalf("expected general fallback, got %+v", got)
	}
	if IsCategory("casino") {
		t.Fatalf("expected casino outside closed set")
	}
}
