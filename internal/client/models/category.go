package models

var categories = map[IncidentType][]string{
	TypeRedFlag: {
		"bribery", "embezzlement", "fraud", "abuse_of_office",
		"nepotism", "conflict_of_interest", "other",
	},
	TypeIntervention: {
		"road_infrastructure", "water_supply", "electricity", "waste_management",
		"public_transport", "healthcare", "education", "security", "other",
	},
}

// Categories returns the selectable categories for t, or nil for an unknown
// type. The returned slice is a copy.
func Categories(t IncidentType) []string {
	c := categories[t]
	if c == nil {
		return nil
	}
	return append([]string(nil), c...)
}

// ValidCategory reports whether category belongs to t.
func ValidCategory(t IncidentType, category string) bool {
	for _, c := range categories[t] {
		if c == category {
			return true
		}
	}
	return false
}
