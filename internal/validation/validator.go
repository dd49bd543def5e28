package validation

import (
	"strings"

	"github.com/preston-bernstein/screen-inventory-service/internal/providers/ssp"
)

// Validate checks one external record against the field table and returns the sanitized
// form. It never fails for defaultable data: missing sections become warnings and are
// filled, while structurally impossible values are reported as errors and kept as-is.
func Validate(rec ssp.Record) Result {
	s := fromRecord(rec)
	res := Result{}
	missingSections := make(map[string]bool)

	for _, r := range rules {
		if r.parent != "" && missingSections[r.parent] {
			continue
		}
		if !r.present(rec) {
			missingSections[r.path] = true
			if r.missing == "" {
				continue
			}
			if r.missing == SeverityError {
				res.Errors = append(res.Errors, Issue{
					Path:     r.path,
					Code:     CodeMissing,
					Message:  "required field is missing",
					Severity: SeverityError,
				})
				continue
			}
			if r.fill != nil {
				r.fill(&s)
			}
			s.Defaulted = append(s.Defaulted, r.path)
			res.Warnings = append(res.Warnings, Issue{
				Path:     r.path,
				Code:     CodeDefaulted,
				Message:  "missing, default applied",
				Severity: SeverityWarning,
			})
			continue
		}
		if r.invalid == nil {
			continue
		}
		if code, msg, bad := r.invalid(s); bad {
			res.Errors = append(res.Errors, Issue{Path: r.path, Code: code, Message: msg, Severity: SeverityError})
		}
	}

	res.Valid = len(res.Errors) == 0
	res.Sanitized = s
	return res
}

// Repair replaces every value the field table considers invalid with its default and
// returns the repaired paths. Missing required identifiers cannot be repaired.
func Repair(s Sanitized) (Sanitized, []string) {
	var repaired []string
	for _, r := range rules {
		if r.invalid == nil || r.repair == nil {
			continue
		}
		if _, _, bad := r.invalid(s); bad {
			r.repair(&s)
			repaired = append(repaired, r.path)
		}
	}
	return s, repaired
}

func fromRecord(rec ssp.Record) Sanitized {
	s := Sanitized{
		SourceID:     strings.TrimSpace(rec.SourceID),
		RequestID:    strings.TrimSpace(rec.RequestID),
		Availability: strings.ToLower(strings.TrimSpace(rec.Availability)),
	}
	if rec.Timestamp != nil {
		s.Timestamp = rec.Timestamp.UTC()
	}
	if v := rec.Venue; v != nil {
		s.VenueID = strings.TrimSpace(v.ID)
		s.VenueName = strings.TrimSpace(v.Name)
		s.VenueTypes = dedupeLower(v.Types)
	}
	if g := rec.Geo; g != nil {
		s.Location = Location{
			City:     strings.TrimSpace(g.City),
			Country:  strings.TrimSpace(g.Country),
			Address:  strings.TrimSpace(g.Address),
			Timezone: strings.TrimSpace(g.Timezone),
		}
		if g.Lat != nil {
			s.Location.Lat = *g.Lat
		}
		if g.Lng != nil {
			s.Location.Lng = *g.Lng
		}
		s.Location.Known = g.Lat != nil && g.Lng != nil
	}
	if sc := rec.Screen; sc != nil {
		if sc.Width != nil {
			s.Screen.Width = *sc.Width
		}
		if sc.Height != nil {
			s.Screen.Height = *sc.Height
		}
		if sc.Brightness != nil {
			s.Screen.Brightness = *sc.Brightness
		}
		if sc.PixelDensity != nil {
			s.Screen.PixelDensity = *sc.PixelDensity
		}
		if sc.Fixed != nil {
			s.Screen.Fixed = *sc.Fixed
		}
		s.Screen.PreviewURL = strings.TrimSpace(sc.PreviewURL)
	}
	if p := rec.Pricing; p != nil {
		if p.FloorPrice != nil {
			s.Pricing.FloorPrice = *p.FloorPrice
		}
		s.Pricing.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	}
	if a := rec.Audience; a != nil && a.DailyImpressions != nil {
		s.DailyImpressions = *a.DailyImpressions
	}
	return s
}

// dedupeLower trims, lowercases and dedupes venue types while keeping their order.
func dedupeLower(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
