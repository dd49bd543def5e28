package store

import (
	"strings"

	"github.com/preston-bernstein/screen-inventory-service/internal/domain/screens"
)

// IntegrityViolation is a cross-record invariant broken in the merged inventory.
type IntegrityViolation struct {
	ScreenID string
	Field    string
	Message  string
}

func (v IntegrityViolation) String() string {
	return v.ScreenID + " " + v.Field + ": " + v.Message
}

// checkIntegrity validates the whole inventory: unique identifiers, required fields and
// source metadata.
func checkIntegrity(all []screens.Screen) []IntegrityViolation {
	var out []IntegrityViolation
	seen := make(map[string]int, len(all))
	for _, s := range all {
		seen[s.ID]++
		if seen[s.ID] == 2 {
			out = append(out, IntegrityViolation{ScreenID: s.ID, Field: "id", Message: "duplicate identifier"})
		}
		if s.ID == "" {
			out = append(out, IntegrityViolation{Field: "id", Message: "missing identifier"})
		}
		if strings.TrimSpace(s.Name) == "" {
			out = append(out, IntegrityViolation{ScreenID: s.ID, Field: "name", Message: "missing name"})
		}
		if !s.Coordinates.Valid() {
			out = append(out, IntegrityViolation{ScreenID: s.ID, Field: "coordinates", Message: "invalid coordinates"})
		}
		if s.Source.External {
			if s.Source.ID == "" {
				out = append(out, IntegrityViolation{ScreenID: s.ID, Field: "source.id", Message: "external screen without source id"})
			}
			if s.Source.LastUpdated.IsZero() {
				out = append(out, IntegrityViolation{ScreenID: s.ID, Field: "source.lastUpdated", Message: "external screen without timestamp"})
			}
		}
	}
	return out
}
