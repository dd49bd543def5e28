package adapter

import (
	"testing"

	"github.com/preston-bernstein/screen-inventory-service/internal/domain/screens"
)

func TestResolutionLabel(t *testing.T) {
	cases := map[int]string{7680: "8K", 3840: "4K", 2560: "QHD", 1920: "Full HD", 1366: "HD", 800: "SD"}
	for width, want := range cases {
		if got := resolutionLabel(width); got != want {
			t.Fatalf("width %d: expected %s got %s", width, want, got)
		}
	}
}

func TestAspectRatioLabel(t *testing.T) {
	cases := []struct {
		w, h int
		want string
	}{
		{1920, 1080, "16:9"},
		{1080, 1920, "9:16"},
		{1024, 768, "4:3"},
		{1000, 1000, "1:1"},
		{2520, 1080, "21:9"},
		{1234, 567, "1234:567"},
		{0, 10, "unknown"},
	}
	for _, tc := range cases {
		if got := aspectRatioLabel(tc.w, tc.h); got != tc.want {
			t.Fatalf("%dx%d: expected %s got %s", tc.w, tc.h, tc.want, got)
		}
	}
}

func TestOrientationAndTechnology(t *testing.T) {
	if orientation(10, 5) != "landscape" || orientation(5, 10) != "portrait" || orientation(5, 5) != "square" {
		t.Fatalf("unexpected orientation labels")
	}
	if technology(2500) != "LED" || technology(800) != "LCD" {
		t.Fatalf("unexpected technology labels")
	}
}

func TestCategoryFor(t *testing.T) {
	cases := []struct {
		types []string
		want  string
	}{
		{[]string{"transit.airports"}, screens.CategoryTransit},
		{[]string{"retail.malls", "transit"}, screens.CategoryRetail},
		{[]string{"malls"}, screens.CategoryRetail},
		{[]string{"point_of_care/doctors_offices"}, screens.CategoryHealth},
		{[]string{"casino royale"}, screens.CategoryGeneral},
		{nil, screens.CategoryGeneral},
	}
	for _, tc := range cases {
		if got := categoryFor(tc.types); got.ID != tc.want || got.Label == "" {
			t.Fatalf("%v: expected %s got %+v", tc.types, tc.want, got)
		}
	}
}

func TestCheckCanonicalFlagsViolations(t *testing.T) {
	bad := screens.Screen{
		ID:          "local-1",
		Price:       -1,
		Rating:      9,
		Coordinates: screens.Coordinates{Lat: 100, Known: true},
		Category:    screens.Category{ID: "casino"},
		Source:      screens.Source{External: true},
		Bundles:     screens.Bundles{Daily: screens.Bundle{Price: -4}},
	}

	fields := map[string]bool{}
	for _, v := range CheckCanonical(bad) {
		fields[v.Field] = true
	}
	for _, want := range []string{"id", "name", "price", "rating", "coordinates", "source.id", "category", "bundles.daily", "specs"} {
		if !fields[want] {
			t.Fatalf("expected violation for %s, got %v", want, fields)
		}
	}
}
