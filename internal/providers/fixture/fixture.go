package fixture

import (
	"context"
	"time"

	"github.com/preston-bernstein/screen-inventory-service/internal/providers/ssp"
)

// DefaultSourceID identifies fixture records when no id is configured.
const DefaultSourceID = "fixture"

// Source returns a static set of records useful for local testing and bootstrapping.
type Source struct {
	sourceID string
	now      func() time.Time
}

// New creates a fixture source whose records carry sourceID.
func New(sourceID string) *Source {
	if sourceID == "" {
		sourceID = DefaultSourceID
	}
	return &Source{
		sourceID: sourceID,
		now:      time.Now,
	}
}

// Name returns the source id.
func (s *Source) Name() string {
	return s.sourceID
}

// FetchBatch returns a deterministic batch covering a complete, a sparse, and a partially invalid record.
func (s *Source) FetchBatch(ctx context.Context) ([]ssp.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stamp := s.now().UTC().Truncate(time.Minute)

	return []ssp.Record{
		{
			SourceID:     s.sourceID,
			RequestID:    "fixture-berlin",
			Timestamp:    &stamp,
			Availability: "available",
			Venue:        &ssp.Venue{ID: "berlin-hbf-01", Name: "Berlin Hbf Concourse", Types: []string{"transit.train_stations"}},
			Geo: &ssp.Geo{
				Lat:      ssp.Float(52.5251),
				Lng:      ssp.Float(13.3694),
				City:     "Berlin",
				Country:  "DE",
				Address:  "Europaplatz 1",
				Timezone: "Europe/Berlin",
			},
			Screen:   &ssp.Screen{Width: ssp.Int(3840), Height: ssp.Int(2160), Brightness: ssp.Int(2500), Fixed: ssp.Bool(true)},
			Pricing:  &ssp.Pricing{FloorPrice: ssp.Float(12.5), Currency: "EUR"},
			Audience: &ssp.Audience{DailyImpressions: ssp.Int64(48000)},
		},
		{
			SourceID:     s.sourceID,
			RequestID:    "fixture-soho",
			Timestamp:    &stamp,
			Availability: "available",
			Venue:        &ssp.Venue{ID: "soho-cafe-02", Name: "Soho Corner Cafe", Types: []string{"hospitality.cafes"}},
			Geo:          &ssp.Geo{Lat: ssp.Float(51.5136), Lng: ssp.Float(-0.1365), City: "London", Country: "GB"},
			Screen:       &ssp.Screen{Width: ssp.Int(1080), Height: ssp.Int(1920), Brightness: ssp.Int(450)},
			Pricing:      &ssp.Pricing{FloorPrice: ssp.Float(2.25), Currency: "GBP"},
		},
		{
			SourceID:  s.sourceID,
			RequestID: "fixture-sparse",
			Timestamp: &stamp,
			Venue:     &ssp.Venue{ID: "roadside-03", Name: "Roadside Billboard"},
			Geo:       &ssp.Geo{Lat: ssp.Float(120)},
			Pricing:   &ssp.Pricing{FloorPrice: ssp.Float(-1)},
		},
	}, nil
}
