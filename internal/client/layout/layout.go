// Package layout decides which pieces of chrome surround a view and renders
// them for the terminal.
package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MobileBreakpoint is the widest viewport that still gets the mobile layout.
const MobileBreakpoint = 768

const (
	OfflineMessage = "You're offline. Some features may not work."
	FABLabel       = "Report New Incident"
)

// State is everything Compose looks at.
type State struct {
	Width         int
	Online        bool
	Authenticated bool
	Admin         bool
	Path          string
}

func (s State) Mobile() bool { return s.Width <= MobileBreakpoint }

type NavItem struct {
	Icon   string
	Label  string
	Path   string
	Active bool
}

// Chrome is the set of elements to draw around the current view.
type Chrome struct {
	OfflineBanner    string
	NotificationBell bool
	HelpButton       bool
	FloatingButton   bool
	BottomNav        []NavItem
	PublicNav        []NavItem
}

var (
	hideBottomNav = map[string]bool{"/login": true, "/register": true, "/verify-email": true}
	hideFAB       = map[string]bool{
		"/login": true, "/register": true, "/verify-email": true,
		"/incidents/create": true, "/help": true,
	}
)

func Compose(s State) Chrome {
	var c Chrome
	if !s.Online {
		c.OfflineBanner = OfflineMessage
	}
	c.NotificationBell = s.Authenticated

	if !s.Mobile() {
		c.HelpButton = true
		return c
	}

	if !s.Authenticated {
		c.PublicNav = items(s.Path,
			NavItem{Icon: "🚨", Label: "Report", Path: "/report"},
			NavItem{Icon: "🔑", Label: "Login", Path: "/login"},
			NavItem{Icon: "👤", Label: "Register", Path: "/register"},
		)
		return c
	}

	c.FloatingButton = !hideFAB[s.Path]
	if hideBottomNav[s.Path] {
		return c
	}

	nav := []NavItem{
		{Icon: "🏠", Label: "Home", Path: "/dashboard"},
		{Icon: "📋", Label: "Incidents", Path: "/incidents"},
		{Icon: "➕", Label: "Report", Path: "/incidents/create"},
	}
	if s.Admin {
		nav = append(nav, NavItem{Icon: "👑", Label: "Admin", Path: "/admin"})
	}
	nav = append(nav, NavItem{Icon: "❓", Label: "Help", Path: "/help"})
	c.BottomNav = items(s.Path, nav...)
	return c
}

func items(path string, in ...NavItem) []NavItem {
	for i := range in {
		in[i].Active = in[i].Path == path
	}
	return in
}

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("160")).
			Padding(0, 1)
	navStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("252"))
	itemStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeStyle = itemStyle.Foreground(lipgloss.Color("62")).Bold(true)
	fabStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	bellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Header renders the elements drawn above a view. badge is the unread
// notification badge text and may be empty.
func (c Chrome) Header(width int, badge string) string {
	var lines []string
	if c.OfflineBanner != "" {
		lines = append(lines, bannerStyle.Width(width).Render("📡 "+c.OfflineBanner))
	}
	if c.NotificationBell {
		bell := "🔔"
		if badge != "" {
			bell += " " + badge
		}
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, bellStyle.Render(bell)))
	}
	return strings.Join(lines, "\n")
}

// Footer renders the elements drawn below a view.
func (c Chrome) Footer(width int) string {
	var lines []string
	if c.FloatingButton {
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, fabStyle.Render("[+] "+FABLabel)))
	}
	if nav := c.nav(); len(nav) > 0 {
		cells := make([]string, 0, len(nav))
		for _, it := range nav {
			st := itemStyle
			if it.Active {
				st = activeStyle
			}
			cells = append(cells, st.Render(it.Icon+" "+it.Label))
		}
		lines = append(lines, navStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Top, cells...)))
	}
	if c.HelpButton {
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, "[?] Help"))
	}
	return strings.Join(lines, "\n")
}

func (c Chrome) nav() []NavItem {
	if len(c.BottomNav) > 0 {
		return c.BottomNav
	}
	return c.PublicNav
}
