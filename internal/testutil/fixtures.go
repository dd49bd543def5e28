package testutil

import (
	"time"

	"github.com/preston-bernstein/screen-inventory-service/internal/domain/screens"
	"github.com/preston-bernstein/screen-inventory-service/internal/providers/ssp"
)

// SampleRecord returns a complete, valid external record for source/venue.
func SampleRecord(source, venue string, floor float64) ssp.Record {
	return ssp.Record{
		SourceID:     source,
		RequestID:    "req-" + venue,
		Availability: "available",
		Venue:        &ssp.Venue{ID: venue, Name: "Venue " + venue, Types: []string{"retail.malls"}},
		Geo:          &ssp.Geo{Lat: ssp.Float(40.7128), Lng: ssp.Float(-74.006), City: "New York", Country: "US"},
		Screen:       &ssp.Screen{Width: ssp.Int(1920), Height: ssp.Int(1080), Brightness: ssp.Int(700)},
		Pricing:      &ssp.Pricing{FloorPrice: ssp.Float(floor), Currency: "USD"},
		Audience:     &ssp.Audience{DailyImpressions: ssp.Int64(12000)},
	}
}

// OutOfRangeRecord has an out-of-range latitude and a negative floor price.
func OutOfRangeRecord() ssp.Record {
	return ssp.Record{
		SourceID: "A",
		Venue:    &ssp.Venue{ID: "1", Name: "Mall X"},
		Geo:      &ssp.Geo{Lat: ssp.Float(95)},
		Pricing:  &ssp.Pricing{FloorPrice: ssp.Float(-5)},
	}
}

// SparseRecord carries identifiers only, so every optional section is defaulted.
func SparseRecord(source, venue string) ssp.Record {
	return ssp.Record{SourceID: source, Venue: &ssp.Venue{ID: venue, Name: "Sparse " + venue}}
}

// LocalScreen returns a locally-operated screen updated at the given time.
func LocalScreen(id string, updated time.Time) screens.Screen {
	return screens.Screen{
		ID:          id,
		Name:        "Local " + id,
		Location:    "Lobby",
		Price:       25,
		Currency:    "USD",
		Available:   true,
		Category:    screens.CategoryByID(screens.CategoryOffice),
		Environment: screens.EnvironmentIndoor,
		Rating:      4,
		Specs:       screens.Specs{Width: 1080, Height: 1920},
		Source:      screens.Source{ID: "local", Name: "Local inventory", LastUpdated: updated},
	}
}
