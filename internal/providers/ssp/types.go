package ssp

import "time"

// Record is one loosely-structured inventory entry as delivered by an external source.
// Nil sections and nil pointers mean the upstream omitted the value.
type Record struct {
	SourceID     string     `json:"source_id,omitempty"`
	RequestID    string     `json:"request_id,omitempty"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	Availability string     `json:"availability,omitempty"`
	Venue        *Venue     `json:"venue,omitempty"`
	Geo          *Geo       `json:"geo,omitempty"`
	Screen       *Screen    `json:"screen,omitempty"`
	Pricing      *Pricing   `json:"pricing,omitempty"`
	Audience     *Audience  `json:"audience,omitempty"`

	// DecodeErr is set by DecodeBatch when this entry failed the record schema or could
	// not be decoded. The remaining fields then hold whatever could be salvaged.
	DecodeErr error `json:"-"`
}

type Venue struct {
	ID    string   `json:"id,omitempty"`
	Name  string   `json:"name,omitempty"`
	Types []string `json:"types,omitempty"`
}

type Geo struct {
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
	City     string   `json:"city,omitempty"`
	Country  string   `json:"country,omitempty"`
	Address  string   `json:"address,omitempty"`
	Timezone string   `json:"timezone,omitempty"`
}

type Screen struct {
	Width        *int     `json:"width,omitempty"`
	Height       *int     `json:"height,omitempty"`
	Brightness   *int     `json:"brightness,omitempty"`
	PixelDensity *float64 `json:"pixel_density,omitempty"`
	Fixed        *bool    `json:"fixed,omitempty"`
	PreviewURL   string   `json:"preview_url,omitempty"`
}

type Pricing struct {
	FloorPrice *float64 `json:"floor_price,omitempty"`
	Currency   string   `json:"currency,omitempty"`
}

type Audience struct {
	DailyImpressions *int64 `json:"daily_impressions,omitempty"`
}

// VenueID returns the venue identifier or "" when the venue section is missing.
func (r Record) VenueID() string {
	if r.Venue == nil {
		return ""
	}
	return r.Venue.ID
}
