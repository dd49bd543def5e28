package validation

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/screen-inventory-service/internal/providers/ssp"
	"github.com/preston-bernstein/screen-inventory-service/internal/timeutil"
)

// Defaults applied when a section or field is missing.
const (
	DefaultWidth        = 1920
	DefaultHeight       = 1080
	DefaultBrightness   = 5000
	DefaultFloorPrice   = 10.0
	DefaultCurrency     = "USD"
	DefaultAvailability = "available"
	UnknownLocation     = "Unknown location"

	// MaxDailyImpressions bounds audience estimates so weekly and monthly totals fit int64.
	MaxDailyImpressions int64 = 1_000_000_000
)

// rule is one row of the declarative field table. Validate uses present/missing/fill to
// classify and default absent values and invalid to flag impossible ones; Repair uses
// invalid/repair so conversion fixes exactly what validation flagged.
type rule struct {
	path string
	// parent suppresses this rule when the parent section itself was missing.
	parent  string
	present func(ssp.Record) bool
	// missing is empty for optional fields whose absence is not reported.
	missing Severity
	fill    func(*Sanitized)
	invalid func(Sanitized) (code, msg string, bad bool)
	repair  func(*Sanitized)
}

var rules = []rule{
	{
		path:    "source_id",
		present: func(r ssp.Record) bool { return strings.TrimSpace(r.SourceID) != "" },
		missing: SeverityError,
	},
	{
		path:    "venue.id",
		present: func(r ssp.Record) bool { return r.Venue != nil && strings.TrimSpace(r.Venue.ID) != "" },
		missing: SeverityError,
	},
	{
		path:    "venue.name",
		present: func(r ssp.Record) bool { return r.Venue != nil && strings.TrimSpace(r.Venue.Name) != "" },
		missing: SeverityWarning,
		fill: func(s *Sanitized) {
			if s.VenueID == "" {
				s.VenueName = "Unnamed screen"
				return
			}
			s.VenueName = "Screen " + s.VenueID
		},
	},
	{
		path:    "geo",
		present: func(r ssp.Record) bool { return r.Geo != nil },
		missing: SeverityWarning,
		fill:    func(s *Sanitized) { s.Location = Location{} },
	},
	{
		path:    "geo.lat",
		parent:  "geo",
		present: func(r ssp.Record) bool { return r.Geo.Lat != nil },
		missing: SeverityWarning,
		fill:    func(s *Sanitized) { s.Location.Known = false },
		invalid: func(s Sanitized) (string, string, bool) {
			if s.Location.Lat < -90 || s.Location.Lat > 90 {
				return CodeOutOfRange, fmt.Sprintf("latitude %v outside [-90, 90]", s.Location.Lat), true
			}
			return "", "", false
		},
		repair: unknownCoordinates,
	},
	{
		path:    "geo.lng",
		parent:  "geo",
		present: func(r ssp.Record) bool { return r.Geo.Lng != nil },
		missing: SeverityWarning,
		fill:    func(s *Sanitized) { s.Location.Known = false },
		invalid: func(s Sanitized) (string, string, bool) {
			if s.Location.Lng < -180 || s.Location.Lng > 180 {
				return CodeOutOfRange, fmt.Sprintf("longitude %v outside [-180, 180]", s.Location.Lng), true
			}
			return "", "", false
		},
		repair: unknownCoordinates,
	},
	{
		path:    "geo.timezone",
		parent:  "geo",
		present: func(r ssp.Record) bool { return strings.TrimSpace(r.Geo.Timezone) != "" },
		invalid: func(s Sanitized) (string, string, bool) {
			if s.Location.Timezone != "" && !timeutil.ValidZone(s.Location.Timezone) {
				return CodeMalformed, fmt.Sprintf("unknown time zone %q", s.Location.Timezone), true
			}
			return "", "", false
		},
		repair: func(s *Sanitized) { s.Location.Timezone = "" },
	},
	{
		path:    "screen",
		present: func(r ssp.Record) bool { return r.Screen != nil },
		missing: SeverityWarning,
		fill: func(s *Sanitized) {
			s.Screen = ScreenSpec{Width: DefaultWidth, Height: DefaultHeight, Brightness: DefaultBrightness}
		},
	},
	{
		path:    "screen.width",
		parent:  "screen",
		present: func(r ssp.Record) bool { return r.Screen.Width != nil },
		missing: SeverityWarning,
		fill:    func(s *Sanitized) { s.Screen.Width = DefaultWidth },
		invalid: func(s Sanitized) (string, string, bool) {
			return nonPositive("width", s.Screen.Width)
		},
		repair: func(s *Sanitized) { s.Screen.Width = DefaultWidth },
	},
	{
		path:    "screen.height",
		parent:  "screen",
		present: func(r ssp.Record) bool { return r.Screen.Height != nil },
		missing: SeverityWarning,
		fill:    func(s *Sanitized) { s.Screen.Height = DefaultHeight },
		invalid: func(s Sanitized) (string, string, bool) {
			return nonPositive("height", s.Screen.Height)
		},
		repair: func(s *Sanitized) { s.Screen.Height = DefaultHeight },
	},
	{
		path:    "screen.brightness",
		parent:  "screen",
		present: func(r ssp.Record) bool { return r.Screen.Brightness != nil },
		missing: SeverityWarning,
		fill:    func(s *Sanitized) { s.Screen.Brightness = DefaultBrightness },
		invalid: func(s Sanitized) (string, string, bool) {
			if s.Screen.Brightness < 0 {
				return CodeNegative, fmt.Sprintf("brightness %d is negative", s.Screen.Brightness), true
			}
			return "", "", false
		},
		repair: func(s *Sanitized) { s.Screen.Brightness = DefaultBrightness },
	},
	{
		path:    "pricing",
		present: func(r ssp.Record) bool { return r.Pricing != nil },
		missing: SeverityWarning,
		fill: func(s *Sanitized) {
			s.Pricing = PricingInfo{FloorPrice: DefaultFloorPrice, Currency: DefaultCurrency}
		},
	},
	{
		path:    "pricing.floor_price",
		parent:  "pricing",
		present: func(r ssp.Record) bool { return r.Pricing.FloorPrice != nil },
		missing: SeverityWarning,
		fill:    func(s *Sanitized) { s.Pricing.FloorPrice = DefaultFloorPrice },
		invalid: func(s Sanitized) (string, string, bool) {
			if s.Pricing.FloorPrice < 0 {
				return CodeNegative, fmt.Sprintf("floor price %v is negative", s.Pricing.FloorPrice), true
			}
			return "", "", false
		},
		repair: func(s *Sanitized) { s.Pricing.FloorPrice = DefaultFloorPrice },
	},
	{
		path:    "pricing.currency",
		parent:  "pricing",
		present: func(r ssp.Record) bool { return strings.TrimSpace(r.Pricing.Currency) != "" },
		missing: SeverityWarning,
		fill:    func(s *Sanitized) { s.Pricing.Currency = DefaultCurrency },
		invalid: func(s Sanitized) (string, string, bool) {
			if !isCurrencyCode(s.Pricing.Currency) {
				return CodeMalformed, fmt.Sprintf("currency %q is not a 3-letter code", s.Pricing.Currency), true
			}
			return "", "", false
		},
		repair: func(s *Sanitized) { s.Pricing.Currency = DefaultCurrency },
	},
	{
		path:    "audience",
		present: func(r ssp.Record) bool { return r.Audience != nil },
		missing: SeverityWarning,
		fill:    func(s *Sanitized) { s.DailyImpressions = 0 },
	},
	{
		path:    "audience.daily_impressions",
		parent:  "audience",
		present: func(r ssp.Record) bool { return r.Audience.DailyImpressions != nil },
		missing: SeverityWarning,
		fill:    func(s *Sanitized) { s.DailyImpressions = 0 },
		invalid: func(s Sanitized) (string, string, bool) {
			if s.DailyImpressions < 0 {
				return CodeNegative, fmt.Sprintf("daily impressions %d is negative", s.DailyImpressions), true
			}
			if s.DailyImpressions > MaxDailyImpressions {
				return CodeOutOfRange, fmt.Sprintf("daily impressions %d above %d", s.DailyImpressions, MaxDailyImpressions), true
			}
			return "", "", false
		},
		repair: func(s *Sanitized) {
			if s.DailyImpressions > MaxDailyImpressions {
				s.DailyImpressions = MaxDailyImpressions
				return
			}
			s.DailyImpressions = 0
		},
	},
	{
		path:    "availability",
		present: func(r ssp.Record) bool { return strings.TrimSpace(r.Availability) != "" },
		missing: SeverityWarning,
		fill:    func(s *Sanitized) { s.Availability = DefaultAvailability },
	},
}

// Paths lists every field path covered by the defaults table, in evaluation order.
func Paths() []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.path)
	}
	return out
}

func unknownCoordinates(s *Sanitized) {
	s.Location.Lat = 0
	s.Location.Lng = 0
	s.Location.Known = false
}

func nonPositive(field string, v int) (string, string, bool) {
	if v <= 0 {
		return CodeNonPositive, fmt.Sprintf("%s %d must be positive", field, v), true
	}
	return "", "", false
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
