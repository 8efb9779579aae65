package views

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/dustin/go-humanize"
)

const (
	TopReportersLimit = 5
	RecentLimit       = 10
	MonthWindow       = 6
	monthLayout       = "Jan 2006"
)

// Count is one bucket of a breakdown.
type Count struct {
	Key     string
	Count   int
	Percent float64
}

type Reporter struct {
	UserID models.ID
	Count  int
}

// MonthBar is one bar of the monthly trend. Scale is Count relative to the
// largest bar in the window, in [0, 1].
type MonthBar struct {
	Month string
	Count int
	Scale float64
}

type Analytics struct {
	Total        int
	ByStatus     []Count
	ByType       []Count
	Monthly      []MonthBar
	TopReporters []Reporter
	Recent       []models.Incident
}

// ComputeAnalytics summarizes incidents for the admin panel. Months are taken
// in the local time zone. The input slice is not modified.
func ComputeAnalytics(incidents []models.Incident) Analytics {
	return computeAnalytics(incidents, time.Local)
}

type tally struct {
	keys   []string
	counts map[string]int
}

func newTally(seed ...string) *tally {
	t := &tally{counts: make(map[string]int)}
	for _, k := range seed {
		t.keys = append(t.keys, k)
		t.counts[k] = 0
	}
	return t
}

func (t *tally) add(k string) {
	if _, ok := t.counts[k]; !ok {
		t.keys = append(t.keys, k)
	}
	t.counts[k]++
}

func (t *tally) buckets(total int) []Count {
	out := make([]Count, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, Count{Key: k, Count: t.counts[k], Percent: percent(t.counts[k], total)})
	}
	return out
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func computeAnalytics(incidents []models.Incident, loc *time.Location) Analytics {
	statuses := newTally(
		string(models.StatusPending), string(models.StatusInvestigating),
		string(models.StatusResolved), string(models.StatusRejected),
	)
	types := newTally(string(models.TypeRedFlag), string(models.TypeIntervention))
	reporters := newTally()

	type month struct {
		start time.Time
		count int
	}
	months := make(map[string]*month)

	for _, inc := range incidents {
		if inc.Status != "" {
			statuses.add(string(inc.Status))
		}
		if inc.Type != "" {
			types.add(string(inc.Type))
		}
		if !inc.CreatedAt.IsZero() {
			t := inc.CreatedAt.In(loc)
			key := t.Format(monthLayout)
			m, ok := months[key]
			if !ok {
				m = &month{start: time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)}
				months[key] = m
			}
			m.count++
		}
		if !inc.UserID.IsZero() {
			reporters.add(inc.UserID.String())
		}
	}

	a := Analytics{
		Total:    len(incidents),
		ByStatus: statuses.buckets(len(incidents)),
		ByType:   types.buckets(len(incidents)),
	}

	for _, c := range reporters.buckets(0) {
		a.TopReporters = append(a.TopReporters, Reporter{UserID: models.ID(c.Key), Count: c.Count})
	}
	slices.SortStableFunc(a.TopReporters, func(x, y Reporter) int { return cmp.Compare(y.Count, x.Count) })
	if len(a.TopReporters) > TopReportersLimit {
		a.TopReporters = a.TopReporters[:TopReportersLimit]
	}

	recent := slices.Clone(incidents)
	slices.SortStableFunc(recent, func(x, y models.Incident) int { return y.CreatedAt.Compare(x.CreatedAt.Time) })
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	a.Recent = recent

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(x, y string) int { return months[x].start.Compare(months[y].start) })
	if len(keys) > MonthWindow {
		keys = keys[len(keys)-MonthWindow:]
	}
	peak := 0
	for _, k := range keys {
		peak = max(peak, months[k].count)
	}
	for _, k := range keys {
		a.Monthly = append(a.Monthly, MonthBar{Month: k, Count: months[k].count, Scale: float64(months[k].count) / float64(peak)})
	}
	return a
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Bar draws a horizontal bar of width cells filled to frac.
func Bar(frac float64, width int) string {
	if width <= 0 {
		return ""
	}
	n := int(frac*float64(width) + 0.5)
	n = min(max(n, 0), width)
	return barStyle.Render(strings.Repeat("█", n)) + mutedStyle.Render(strings.Repeat("░", width-n))
}

// Render draws the analytics tab. barWidth is the width of the longest bar.
func (a Analytics) Render(barWidth int, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\nTotal incidents: %d\n", headingStyle.Render("Analytics"), a.Total)

	b.WriteString("\n" + headingStyle.Render("By status") + "\n")
	for _, c := range a.ByStatus {
		fmt.Fprintf(&b, "%-14s %s %d (%.1f%%)\n", StatusLabel(models.Status(c.Key)), Bar(c.Percent/100, barWidth), c.Count, c.Percent)
	}

	b.WriteString("\n" + headingStyle.Render("By type") + "\n")
	for _, c := range a.ByType {
		fmt.Fprintf(&b, "%-14s %s %d (%.1f%%)\n", models.IncidentType(c.Key).Label(), Bar(c.Percent/100, barWidth), c.Count, c.Percent)
	}

	b.WriteString("\n" + headingStyle.Render("Monthly trend") + "\n")
	if len(a.Monthly) == 0 {
		b.WriteString(mutedStyle.Render("No data yet") + "\n")
	}
	for _, m := range a.Monthly {
		fmt.Fprintf(&b, "%-9s %s %d\n", m.Month, Bar(m.Scale, barWidth), m.Count)
	}

	b.WriteString("\n" + headingStyle.Render("Top reporters") + "\n")
	if len(a.TopReporters) == 0 {
		b.WriteString(mutedStyle.Render("No reporters yet") + "\n")
	}
	for i, r := range a.TopReporters {
		fmt.Fprintf(&b, "%d. %s  %s\n", i+1, r.UserID, humanize.Comma(int64(r.Count))+" report(s)")
	}

	b.WriteString("\n" + headingStyle.Render("Recent activity") + "\n")
	if len(a.Recent) == 0 {
		b.WriteString(mutedStyle.Render("No recent activity") + "\n")
	}
	for _, inc := range a.Recent {
		fmt.Fprintf(&b, "%s  %s  %s  %s\n", inc.ID, inc.Title, StatusLabel(inc.Status), mutedStyle.Render(Age(inc.CreatedAt, now)))
	}
	return b.String()
}

// StatusLabel capitalizes a status for display.
func StatusLabel(s models.Status) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Age renders ts relative to now, or "" for a zero timestamp.
func Age(ts models.Timestamp, now time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return humanize.RelTime(ts.Time, now, "ago", "from now")
}
