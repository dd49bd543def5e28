package adapter

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/screen-inventory-service/internal/domain/screens"
)

// Violation is a canonical invariant broken by a converted screen.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

// CheckCanonical re-validates a converted screen against the canonical invariants. These
// are distinct from the record-level checks: they guard the output, not the input.
func CheckCanonical(s screens.Screen) []Violation {
	var out []Violation
	add := func(field, format string, args ...any) {
		out = append(out, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if s.ID == "" {
		add("id", "empty identifier")
	} else if s.Source.External && !strings.HasPrefix(s.ID, screens.IDPrefix) {
		add("id", "external identifier %q lacks %q prefix", s.ID, screens.IDPrefix)
	}
	if s.Name == "" {
		add("name", "empty display name")
	}
	if strings.ContainsAny(s.Name, "<>") || len([]rune(s.Name)) > MaxTextLength {
		add("name", "display name not sanitized")
	}
	if s.Price < 0 {
		add("price", "negative price %v", s.Price)
	}
	if s.Rating < screens.MinRating || s.Rating > screens.MaxRating {
		add("rating", "rating %v outside [%v, %v]", s.Rating, screens.MinRating, screens.MaxRating)
	}
	if !s.Coordinates.Valid() {
		add("coordinates", "invalid coordinates %+v", s.Coordinates)
	}
	if s.Source.External && s.Source.ID == "" {
		add("source.id", "external screen without source id")
	}
	if !screens.IsCategory(s.Category.ID) {
		add("category", "unknown category %q", s.Category.ID)
	}
	bundles := []struct {
		name string
		b    screens.Bundle
	}{
		{"hourly", s.Bundles.Hourly},
		{"daily", s.Bundles.Daily},
		{"weekly", s.Bundles.Weekly},
		{"monthly", s.Bundles.Monthly},
	}
	for _, entry := range bundles {
		if entry.b.Price < 0 {
			add("bundles."+entry.name, "negative bundle price %v", entry.b.Price)
		}
	}
	if s.Specs.Width <= 0 || s.Specs.Height <= 0 {
		add("specs", "non-positive dimensions %dx%d", s.Specs.Width, s.Specs.Height)
	}
	return out
}
