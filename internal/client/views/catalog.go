package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/dmitrijs2005/ireporter/internal/client/services"
)

// CategoryOption is a selectable category with its display text.
type CategoryOption struct {
	Value       string
	Label       string
	Description string
}

var categoryText = map[models.IncidentType]map[string][2]string{
	models.TypeRedFlag: {
		"bribery":              {"💰 Bribery", "Offering or accepting bribes"},
		"embezzlement":         {"💼 Embezzlement", "Theft of public funds"},
		"fraud":                {"🎭 Fraud", "Deception for financial gain"},
		"abuse_of_office":      {"👔 Abuse of Office", "Misuse of official position"},
		"nepotism":             {"👨‍👩‍👧 Nepotism", "Favoritism to relatives"},
		"conflict_of_interest": {"⚖️ Conflict of Interest", "Personal interests affecting duties"},
		"other":                {"🚩 Other Corruption", "Other forms of corruption"},
	},
	models.TypeIntervention: {
		"road_infrastructure": {"🛣️ Road Infrastructure", "Potholes, damaged roads"},
		"water_supply":        {"💧 Water Supply", "Water shortage, contamination"},
		"electricity":         {"⚡ Electricity", "Power outages, faulty lines"},
		"waste_management":    {"🗑️ Waste Management", "Garbage collection issues"},
		"public_transport":    {"🚌 Public Transport", "Transport service problems"},
		"healthcare":          {"🏥 Healthcare", "Medical facility issues"},
		"education":           {"🎓 Education", "School infrastructure problems"},
		"security":            {"🚨 Security", "Safety and security concerns"},
		"other":               {"🔧 Other Service", "Other public service issues"},
	},
}

// CategoryOptions lists the categories of t in catalogue order.
func CategoryOptions(t models.IncidentType) []CategoryOption {
	values := models.Categories(t)
	out := make([]CategoryOption, 0, len(values))
	for _, v := range values {
		txt := categoryText[t][v]
		out = append(out, CategoryOption{Value: v, Label: txt[0], Description: txt[1]})
	}
	return out
}

// CategoryLabel is the display label of category, falling back to the raw
// value for categories outside the catalogue.
func CategoryLabel(t models.IncidentType, category string) string {
	if txt, ok := categoryText[t][category]; ok {
		return txt[0]
	}
	return category
}

// Draft is the create form while it is being filled in.
type Draft struct {
	services.IncidentForm
}

// NewDraft starts a red flag report with no category.
func NewDraft() *Draft {
	return &Draft{IncidentForm: services.IncidentForm{Type: string(models.TypeRedFlag)}}
}

// SetType switches the incident type. A change of type clears the category.
func (d *Draft) SetType(s string) error {
	t, err := models.ParseIncidentType(s)
	if err != nil {
		return err
	}
	if string(t) != d.Type {
		d.Category = ""
	}
	d.Type = string(t)
	return nil
}

// SetCategory picks a category by value or by its 1-based position in
// CategoryOptions. An empty choice clears it.
func (d *Draft) SetCategory(choice string) error {
	choice = strings.TrimSpace(choice)
	if choice == "" {
		d.Category = ""
		return nil
	}
	opts := CategoryOptions(models.IncidentType(d.Type))
	if n, err := strconv.Atoi(choice); err == nil {
		if n < 1 || n > len(opts) {
			return fmt.Errorf("category number must be between 1 and %d", len(opts))
		}
		d.Category = opts[n-1].Value
		return nil
	}
	if !models.ValidCategory(models.IncidentType(d.Type), choice) {
		return fmt.Errorf("unknown category %q for %s", choice, models.IncidentType(d.Type).Label())
	}
	d.Category = choice
	return nil
}

// RenderCategories lists the options of t, numbered from 1.
func RenderCategories(t models.IncidentType) string {
	var b strings.Builder
	for i, o := range CategoryOptions(t) {
		fmt.Fprintf(&b, "%2d. %s  %s\n", i+1, o.Label, mutedStyle.Render(o.Description))
	}
	return b.String()
}
