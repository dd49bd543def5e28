package screens

// Internal category identifiers.
const (
	CategoryTransit       = "transit"
	CategoryRetail        = "retail"
	CategoryOutdoor       = "outdoor"
	CategoryEntertainment = "entertainment"
	CategoryOffice        = "office"
	CategoryHealth        = "health"
	CategoryEducation     = "education"
	CategoryHospitality   = "hospitality"
	CategoryGeneral       = "general"
)

var categoryLabels = map[string]string{
	CategoryTransit:       "Transit & Travel",
	CategoryRetail:        "Retail & Shopping",
	CategoryOutdoor:       "Outdoor & Roadside",
	CategoryEntertainment: "Entertainment & Leisure",
	CategoryOffice:        "Office & Business",
	CategoryHealth:        "Health & Fitness",
	CategoryEducation:     "Education",
	CategoryHospitality:   "Hospitality & Dining",
	CategoryGeneral:       "General",
}

// CategoryByID returns the category for id, falling back to general for unknown ids.
func CategoryByID(id string) Category {
	if label, ok := categoryLabels[id]; ok {
		return Category{ID: id, Label: label}
	}
	return Category{ID: CategoryGeneral, Label: categoryLabels[CategoryGeneral]}
}

// IsCategory reports whether id belongs to the closed category set.
func IsCategory(id string) bool {
	_, ok := categoryLabels[id]
	return ok
}
