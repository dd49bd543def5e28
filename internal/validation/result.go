package validation

import (
	"strings"
	"time"
)

// Severity separates issues that block a record from ones that were defaulted.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue codes.
const (
	CodeMissing     = "missing"
	CodeDefaulted   = "defaulted"
	CodeNegative    = "negative"
	CodeNonPositive = "non_positive"
	CodeOutOfRange  = "out_of_range"
	CodeMalformed   = "malformed"
)

// Issue is one field-level finding.
type Issue struct {
	Path     string   `json:"path"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (i Issue) Error() string {
	return i.Path + ": " + i.Message
}

// Result is the outcome of validating one external record.
type Result struct {
	Valid     bool
	Errors    []Issue
	Warnings  []Issue
	Sanitized Sanitized
}

// HardInvalid reports whether the record lacks something no default can supply
// (a required identifier). Soft errors are repaired during conversion instead.
func (r Result) HardInvalid() bool {
	for _, issue := range r.Errors {
		if issue.Code == CodeMissing {
			return true
		}
	}
	return false
}

// ErrorMessages flattens errors for logging.
func (r Result) ErrorMessages() []string {
	return messages(r.Errors)
}

// WarningMessages flattens warnings for logging.
func (r Result) WarningMessages() []string {
	return messages(r.Warnings)
}

func messages(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Error())
	}
	return out
}

// Location is the sanitized geolocation section.
// Known is false when either coordinate was absent; Lat/Lng keep whatever the source sent.
type Location struct {
	Lat      float64
	Lng      float64
	Known    bool
	City     string
	Country  string
	Address  string
	Timezone string
}

// ScreenSpec is the sanitized screen section.
type ScreenSpec struct {
	Width        int
	Height       int
	Brightness   int
	PixelDensity float64
	Fixed        bool
	PreviewURL   string
}

// PricingInfo is the sanitized pricing section.
type PricingInfo struct {
	FloorPrice float64
	Currency   string
}

// Sanitized is the strongly typed record produced by Validate. Every section is populated,
// either from the source or from the defaults table; out-of-range values are retained
// and flagged in Result.Errors.
type Sanitized struct {
	SourceID         string
	RequestID        string
	Timestamp        time.Time
	Availability     string
	VenueID          string
	VenueName        string
	VenueTypes       []string
	Location         Location
	Screen           ScreenSpec
	Pricing          PricingInfo
	DailyImpressions int64
	// Defaulted lists the field paths filled from the defaults table.
	Defaulted []string
}

// WasDefaulted reports whether path was filled from the defaults table.
func (s Sanitized) WasDefaulted(path string) bool {
	for _, p := range s.Defaulted {
		if p == path || strings.HasPrefix(p, path+".") {
			return true
		}
	}
	return false
}
