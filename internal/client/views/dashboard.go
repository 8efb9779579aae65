package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/dmitrijs2005/ireporter/internal/client/services"
)

const (
	LatestLimit         = 5
	NoticeLoadDashboard = "Failed to load dashboard data"
)

// Summary is the dashboard: counters plus the latest incidents as the
// backend ordered them.
type Summary struct {
	Stats  models.Stats
	Latest []models.Incident
}

func Summarize(incidents []models.Incident) Summary {
	s := Summary{Stats: models.Stats{Total: len(incidents)}}
	for _, inc := range incidents {
		switch inc.Status {
		case models.StatusPending:
			s.Stats.Pending++
		case models.StatusInvestigating:
			s.Stats.Investigating++
		case models.StatusResolved:
			s.Stats.Resolved++
		case models.StatusRejected:
			s.Stats.Rejected++
		}
		switch inc.Type {
		case models.TypeRedFlag:
			s.Stats.RedFlags++
		case models.TypeIntervention:
			s.Stats.Interventions++
		}
	}
	s.Latest = append([]models.Incident(nil), incidents[:min(len(incidents), LatestLimit)]...)
	return s
}

func LoadDashboard(ctx context.Context, svc services.IncidentService) (Summary, error) {
	list, err := svc.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(list), nil
}

var (
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(16)
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
)

// RoleBanner greets u and names its role.
func RoleBanner(u *models.User) string {
	if u == nil {
		return ""
	}
	role := "Citizen"
	if u.Admin() {
		role = "Administrator"
	}
	return bannerStyle.Render(fmt.Sprintf("Welcome, %s (%s)", u.Name, role))
}

func (s Summary) Render(u *models.User, now time.Time) string {
	card := func(label string, n int) string {
		return cardStyle.Render(fmt.Sprintf("%s\n%d", label, n))
	}

	var b strings.Builder
	if banner := RoleBanner(u); banner != "" {
		b.WriteString(banner + "\n")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("📊 Total", s.Stats.Total),
		card("⏳ Pending", s.Stats.Pending),
		card("🔍 Investigating", s.Stats.Investigating),
		card("✅ Resolved", s.Stats.Resolved),
	) + "\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("❌ Rejected", s.Stats.Rejected),
		card("🚩 Red flags", s.Stats.RedFlags),
		card("🔧 Interventions", s.Stats.Interventions),
	) + "\n")

	b.WriteString("\n" + headingStyle.Render("Recent incidents") + "\n")
	if len(s.Latest) == 0 {
		b.WriteString(mutedStyle.Render("No incidents yet. Use 'report' to file one.") + "\n")
	}
	for _, inc := range s.Latest {
		b.WriteString(IncidentRow(inc, now) + "\n")
	}
	return b.String()
}

var statusColors = map[models.Status]lipgloss.Color{
	models.StatusPending:       "220",
	models.StatusInvestigating: "33",
	models.StatusResolved:      "34",
	models.StatusRejected:      "160",
}

// StatusBadge renders a colored status label.
func StatusBadge(s models.Status) string {
	c, ok := statusColors[s]
	if !ok {
		c = "245"
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(StatusLabel(s))
}

func typeIcon(t models.IncidentType) string {
	if t == models.TypeIntervention {
		return "🔧"
	}
	return "🚩"
}

// IncidentRow is the one-line form of inc used by lists.
func IncidentRow(inc models.Incident, now time.Time) string {
	line := fmt.Sprintf("%s %s  %s  [%s]  %s", typeIcon(inc.Type), inc.ID, inc.Title, StatusBadge(inc.Status), inc.Location)
	if age := Age(inc.CreatedAt, now); age != "" {
		line += "  " + mutedStyle.Render(age)
	}
	return line
}

// RenderList draws the incident list view under filter f.
func RenderList(list []models.Incident, f Filter, now time.Time) string {
	var b strings.Builder
	shown := f.Apply(list)
	fmt.Fprintf(&b, "%s  (filter: %s, %d of %d)\n", headingStyle.Render("Incidents"), f, len(shown), len(list))
	if len(shown) == 0 {
		b.WriteString(mutedStyle.Render("No incidents found") + "\n")
	}
	for _, inc := range shown {
		b.WriteString(IncidentRow(inc, now) + "\n")
	}
	return b.String()
}

// RenderDetail draws the detail view of inc with the actions a offers.
func RenderDetail(inc models.Incident, a Actions, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", typeIcon(inc.Type), headingStyle.Render(inc.Title))
	fmt.Fprintf(&b, "ID:        %s\n", inc.ID)
	fmt.Fprintf(&b, "Type:      %s\n", inc.Type.Label())
	if inc.Category != "" {
		fmt.Fprintf(&b, "Category:  %s\n", CategoryLabel(inc.Type, inc.Category))
	}
	fmt.Fprintf(&b, "Status:    %s\n", StatusBadge(inc.Status))
	fmt.Fprintf(&b, "Location:  %s\n", inc.Location)
	fmt.Fprintf(&b, "Reporter:  %s\n", inc.Reporter())
	if !inc.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Reported:  %s (%s)\n", inc.CreatedAt.Local().Format("2006-01-02 15:04"), Age(inc.CreatedAt, now))
	}
	if inc.MediaURL != "" {
		fmt.Fprintf(&b, "Media:     %s\n", inc.MediaURL)
	}
	fmt.Fprintf(&b, "\n%s\n", inc.Description)

	cmds := []string{"back"}
	if a.Edit {
		cmds = append(cmds, "edit")
	}
	if a.Delete {
		cmds = append(cmds, "delete")
	}
	if a.ChangeStatus {
		cmds = append(cmds, "status <pending|investigating|resolved|rejected>")
	}
	b.WriteString("\n" + mutedStyle.Render("Actions: "+strings.Join(cmds, ", ")) + "\n")
	return b.String()
}
