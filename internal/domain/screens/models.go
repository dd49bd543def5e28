package screens

import "time"

// Environment classifies where a screen is installed.
type Environment string

const (
	EnvironmentIndoor  Environment = "indoor"
	EnvironmentOutdoor Environment = "outdoor"
)

const (
	// IDPrefix marks identifiers derived from external sources.
	IDPrefix = "ssp-"

	MinRating = 1.0
	MaxRating = 5.0
)

// Category is one of the closed set of internal venue categories.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Specs captures the technical details of the panel.
type Specs struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Resolution   string  `json:"resolution"`
	Brightness   int     `json:"brightness"`
	AspectRatio  string  `json:"aspectRatio"`
	Orientation  string  `json:"orientation"`
	PixelDensity float64 `json:"pixelDensity"`
	ColorDepth   string  `json:"colorDepth"`
	RefreshRate  int     `json:"refreshRate"`
	Technology   string  `json:"technology"`
	PreviewURL   string  `json:"previewUrl,omitempty"`
}

// Audience holds estimated view counts.
type Audience struct {
	Daily   int64 `json:"daily"`
	Weekly  int64 `json:"weekly"`
	Monthly int64 `json:"monthly"`
}

// Coordinates is either a valid lat/lng pair or the unknown sentinel (Known=false, 0/0).
type Coordinates struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Known bool    `json:"known"`
}

// UnknownCoordinates is stored when a record carries no usable location.
var UnknownCoordinates = Coordinates{}

// Valid reports whether c is a known, in-range coordinate pair or the unknown sentinel.
func (c Coordinates) Valid() bool {
	if !c.Known {
		return c.Lat == 0 && c.Lng == 0
	}
	return InRange(c.Lat, c.Lng)
}

// InRange reports whether lat/lng are within geographic bounds.
func InRange(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Bundle is one time-bucketed pricing option.
type Bundle struct {
	Enabled bool    `json:"enabled"`
	Price   float64 `json:"price"`
	Spots   int     `json:"spots"`
}

// Bundles groups the hourly/daily/weekly/monthly options.
type Bundles struct {
	Hourly  Bundle `json:"hourly"`
	Daily   Bundle `json:"daily"`
	Weekly  Bundle `json:"weekly"`
	Monthly Bundle `json:"monthly"`
}

// Traffic summarizes footfall derived from audience estimates.
type Traffic struct {
	DailyImpressions int64  `json:"dailyImpressions"`
	HourlyAverage    int64  `json:"hourlyAverage"`
	Level            string `json:"level"`
}

// LocationDetail is the structured form of Location.
type LocationDetail struct {
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Geohash  string `json:"geohash,omitempty"`
}

// OperatingHours is the daily window during which spots play.
type OperatingHours struct {
	Open     string `json:"open"`
	Close    string `json:"close"`
	Timezone string `json:"timezone,omitempty"`
}

// Source records where a screen came from.
type Source struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	RecordID    string    `json:"recordId,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
	External    bool      `json:"external"`
}

// Screen is the canonical sellable display exposed to the marketplace.
type Screen struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Location       string         `json:"location"`
	Price          float64        `json:"price"`
	Currency       string         `json:"currency"`
	Available      bool           `json:"available"`
	Category       Category       `json:"category"`
	Environment    Environment    `json:"environment"`
	Specs          Specs          `json:"specs"`
	Audience       Audience       `json:"audience"`
	Rating         float64        `json:"rating"`
	ReviewCount    int            `json:"reviewCount"`
	Coordinates    Coordinates    `json:"coordinates"`
	Bundles        Bundles        `json:"bundles"`
	Traffic        Traffic        `json:"traffic"`
	LocationDetail LocationDetail `json:"locationDetail"`
	OperatingHours OperatingHours `json:"operatingHours"`
	Source         Source         `json:"source"`
}

// ClampRating bounds a rating to [MinRating, MaxRating].
func ClampRating(r float64) float64 {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}
