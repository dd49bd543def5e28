package adapter

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmcloughlin/geohash"

	"github.com/preston-bernstein/screen-inventory-service/internal/domain/screens"
	"github.com/preston-bernstein/screen-inventory-service/internal/validation"
)

const geohashPrecision = 7

// SourceNamer resolves a source id to its display name.
type SourceNamer interface {
	Name(sourceID string) string
}

// Converter maps sanitized external records to canonical screens.
type Converter struct {
	names SourceNamer
	now   func() time.Time
}

// NewConverter builds a Converter. names may be nil, in which case the source id doubles
// as the display name; now defaults to time.Now.
func NewConverter(names SourceNamer, now func() time.Time) *Converter {
	if now == nil {
		now = time.Now
	}
	return &Converter{names: names, now: now}
}

// ID derives the canonical identifier for a source/venue pair.
func ID(sourceID, venueID string) string {
	return screens.IDPrefix + sourceID + "-" + venueID
}

// Convert emits exactly one canonical screen for s. Values the validator flagged as
// invalid are first replaced through the shared defaults table; only a missing
// identifier is fatal.
func (c *Converter) Convert(s validation.Sanitized) (screens.Screen, error) {
	if s.SourceID == "" || s.VenueID == "" {
		return screens.Screen{}, &ConversionError{SourceID: s.SourceID, VenueID: s.VenueID, Err: ErrMissingIdentifier}
	}
	s, _ = validation.Repair(s)

	coords := screens.UnknownCoordinates
	if s.Location.Known {
		coords = screens.Coordinates{Lat: s.Location.Lat, Lng: s.Location.Lng, Known: true}
	}
	detail := screens.LocationDetail{
		Address:  SanitizeText(s.Location.Address),
		City:     sanitizeCity(s.Location.City),
		Country:  strings.ToUpper(SanitizeText(s.Location.Country)),
		Timezone: SanitizeText(s.Location.Timezone),
	}
	if coords.Known {
		detail.Geohash = geohash.EncodeWithPrecision(coords.Lat, coords.Lng, geohashPrecision)
	}

	name := SanitizeText(s.VenueName)
	if name == "" {
		name = SanitizeText("Screen " + s.VenueID)
	}

	floor := roundPrice(s.Pricing.FloorPrice)
	daily := s.DailyImpressions
	width, height := s.Screen.Width, s.Screen.Height

	environment := screens.EnvironmentIndoor
	if s.Screen.Fixed {
		environment = screens.EnvironmentOutdoor
	}

	recordID := s.RequestID
	if recordID == "" {
		recordID = s.VenueID
	}

	return screens.Screen{
		ID:          ID(s.SourceID, s.VenueID),
		Name:        name,
		Location:    locationLabel(detail, coords),
		Price:       floor,
		Currency:    s.Pricing.Currency,
		Available:   isAvailable(s.Availability),
		Category:    categoryFor(s.VenueTypes),
		Environment: environment,
		Specs: screens.Specs{
			Width:        width,
			Height:       height,
			Resolution:   resolutionLabel(width),
			Brightness:   s.Screen.Brightness,
			AspectRatio:  aspectRatioLabel(width, height),
			Orientation:  orientation(width, height),
			PixelDensity: s.Screen.PixelDensity,
			ColorDepth:   defaultColorDepth,
			RefreshRate:  defaultRefreshRate,
			Technology:   technology(s.Screen.Brightness),
			PreviewURL:   sanitizeURL(s.Screen.PreviewURL),
		},
		Audience: screens.Audience{
			Daily:   daily,
			Weekly:  daily * DaysPerWeek,
			Monthly: daily * DaysPerMonth,
		},
		Rating:      qualityRating(daily, floor, width, s.Screen.Brightness),
		Coordinates: coords,
		Bundles:     bundlesFor(floor),
		Traffic: screens.Traffic{
			DailyImpressions: daily,
			HourlyAverage:    daily / HoursPerDay,
			Level:            trafficLevel(daily),
		},
		LocationDetail: detail,
		OperatingHours: screens.OperatingHours{
			Open:     operatingOpen,
			Close:    operatingClose,
			Timezone: detail.Timezone,
		},
		Source: screens.Source{
			ID:          s.SourceID,
			Name:        c.sourceName(s.SourceID),
			RecordID:    SanitizeText(recordID),
			LastUpdated: c.now().UTC(),
			External:    true,
		},
	}, nil
}

func (c *Converter) sourceName(id string) string {
	if c.names != nil {
		if name := c.names.Name(id); name != "" {
			return SanitizeText(name)
		}
	}
	return SanitizeText(id)
}

func locationLabel(d screens.LocationDetail, coords screens.Coordinates) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{d.Address, d.City, d.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return SanitizeText(strings.Join(parts, ", "))
	}
	if coords.Known {
		return fmt.Sprintf("%.4f, %.4f", coords.Lat, coords.Lng)
	}
	return validation.UnknownLocation
}

func isAvailable(status string) bool {
	switch status {
	case "unavailable", "booked", "sold_out", "inactive", "maintenance", "offline":
		return false
	default:
		return true
	}
}
