package adapter

import (
	"strings"

	"github.com/preston-bernstein/screen-inventory-service/internal/domain/screens"
)

// venueCategories maps upstream venue-type keys (whole keys or taxonomy segments) to the
// closed set of internal categories.
var venueCategories = map[string]string{
	"transit":        screens.CategoryTransit,
	"airports":       screens.CategoryTransit,
	"airport":        screens.CategoryTransit,
	"rail":           screens.CategoryTransit,
	"train_stations": screens.CategoryTransit,
	"subway":         screens.CategoryTransit,
	"metro":          screens.CategoryTransit,
	"bus":            screens.CategoryTransit,
	"bus_shelters":   screens.CategoryTransit,
	"taxi":           screens.CategoryTransit,
	"gas_stations":   screens.CategoryTransit,

	"retail":             screens.CategoryRetail,
	"malls":              screens.CategoryRetail,
	"mall":               screens.CategoryRetail,
	"grocery":            screens.CategoryRetail,
	"supermarkets":       screens.CategoryRetail,
	"convenience_stores": screens.CategoryRetail,
	"pharmacies":         screens.CategoryRetail,

	"outdoor":          screens.CategoryOutdoor,
	"billboards":       screens.CategoryOutdoor,
	"roadside":         screens.CategoryOutdoor,
	"street_furniture": screens.CategoryOutdoor,
	"urban_panels":     screens.CategoryOutdoor,

	"entertainment":  screens.CategoryEntertainment,
	"cinemas":        screens.CategoryEntertainment,
	"movie_theaters": screens.CategoryEntertainment,
	"stadiums":       screens.CategoryEntertainment,
	"arenas":         screens.CategoryEntertainment,
	"bars":           screens.CategoryEntertainment,
	"casinos":        screens.CategoryEntertainment,

	"office":           screens.CategoryOffice,
	"offices":          screens.CategoryOffice,
	"office_buildings": screens.CategoryOffice,
	"business":         screens.CategoryOffice,
	"coworking":        screens.CategoryOffice,

	"health":          screens.CategoryHealth,
	"healthcare":      screens.CategoryHealth,
	"hospitals":       screens.CategoryHealth,
	"doctors_offices": screens.CategoryHealth,
	"gyms":            screens.CategoryHealth,
	"fitness":         screens.CategoryHealth,

	"education":    screens.CategoryEducation,
	"schools":      screens.CategoryEducation,
	"universities": screens.CategoryEducation,
	"colleges":     screens.CategoryEducation,

	"hospitality": screens.CategoryHospitality,
	"hotels":      screens.CategoryHospitality,
	"restaurants": screens.CategoryHospitality,
	"qsr":         screens.CategoryHospitality,
	"cafes":       screens.CategoryHospitality,
}

// categoryFor maps the first venue type to an internal category: whole key first, then
// each taxonomy segment from the most general ("transit.airports" -> "transit").
func categoryFor(venueTypes []string) screens.Category {
	if len(venueTypes) == 0 {
		return screens.CategoryByID(screens.CategoryGeneral)
	}
	key := strings.ToLower(strings.TrimSpace(venueTypes[0]))
	if id, ok := venueCategories[key]; ok {
		return screens.CategoryByID(id)
	}
	for _, segment := range strings.FieldsFunc(key, func(r rune) bool { return r == '.' || r == '/' || r == ':' }) {
		if id, ok := venueCategories[segment]; ok {
			return screens.CategoryByID(id)
		}
	}
	return screens.CategoryByID(screens.CategoryGeneral)
}
