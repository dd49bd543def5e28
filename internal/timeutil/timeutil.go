package timeutil

import (
	"strings"
	"time"
	// Embedded zone database so validation does not depend on the host's zoneinfo.
	_ "time/tzdata"
)

// CanonicalZone resolves an IANA zone name and returns its canonical spelling.
// Empty names and the process-local zone are rejected.
func CanonicalZone(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return "", false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return "", false
	}
	return loc.String(), true
}

// ValidZone reports whether name is a loadable IANA zone.
func ValidZone(name string) bool {
	_, ok := CanonicalZone(name)
	return ok
}
