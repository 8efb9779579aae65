package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dmitrijs2005/ireporter/internal/client/guard"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/dmitrijs2005/ireporter/internal/client/services"
	"golang.org/x/sync/errgroup"
)

const (
	NoticeAdminRequired = "Admin access required"
	NoticeLoadUsers     = "Failed to load users"
	NoticeRoleFailed    = "Failed to update user role"
	NoticeDeleteUser    = "Failed to delete user"
)

// AdminPanel is the data behind the admin view. The two loads are
// independent: either may fail while the other succeeds.
type AdminPanel struct {
	Users        []models.User
	Incidents    []models.Incident
	Analytics    Analytics
	UsersErr     error
	IncidentsErr error
}

// Notices are the messages to show for failed loads.
func (p AdminPanel) Notices() []string {
	var out []string
	if p.UsersErr != nil {
		out = append(out, NoticeLoadUsers)
	}
	if p.IncidentsErr != nil {
		out = append(out, NoticeLoadIncidents)
	}
	return out
}

// LoadAdminPanel loads users and incidents concurrently. A non-admin is sent
// to the dashboard without any request being made.
func LoadAdminPanel(ctx context.Context, users services.UserService, incidents services.IncidentService, v Viewer) (AdminPanel, Outcome) {
	if !v.IsAdmin() {
		return AdminPanel{}, Outcome{Redirect: guard.PathDashboard, Notice: NoticeAdminRequired}
	}

	var p AdminPanel
	var g errgroup.Group
	g.Go(func() error {
		p.Users, p.UsersErr = users.ListUsers(ctx)
		return nil
	})
	g.Go(func() error {
		p.Incidents, p.IncidentsErr = incidents.List(ctx)
		return nil
	})
	_ = g.Wait()

	if p.IncidentsErr == nil {
		p.Analytics = ComputeAnalytics(p.Incidents)
	}
	return p, Outcome{}
}

// ChangeUserRole applies role to the user id and returns the success notice.
// The caller's own session is not touched.
func ChangeUserRole(ctx context.Context, users services.UserService, id models.ID, role string) (string, error) {
	r, err := users.ChangeRole(ctx, id, role)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("User role updated to %s", r), nil
}

var userTableStyle = lipgloss.NewStyle().Padding(0, 1)

// RenderUsers draws the users tab. self is marked so an admin can tell
// which row is their own account.
func RenderUsers(users []models.User, self *models.User, now time.Time) string {
	if len(users) == 0 {
		return mutedStyle.Render("No users found") + "\n"
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style { return userTableStyle }).
		Headers("ID", "Name", "Email", "Role", "Joined")
	for _, u := range users {
		name := u.Name
		if self != nil && u.ID == self.ID {
			name += " (you)"
		}
		role := string(u.Role)
		if u.Admin() {
			role = "👑 " + role
		}
		t.Row(u.ID.String(), name, u.Email, role, Age(u.CreatedAt, now))
	}
	return t.String() + "\n" + mutedStyle.Render("Commands: role <id> <user|admin>, deluser <id>, analytics") + "\n"
}

// RenderAdminPanel draws the requested tab: "users" or "analytics".
func RenderAdminPanel(p AdminPanel, tab string, self *models.User, barWidth int, now time.Time) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Admin Panel") + "  " + mutedStyle.Render("tabs: analytics, users") + "\n\n")
	switch tab {
	case "users":
		b.WriteString(RenderUsers(p.Users, self, now))
	default:
		b.WriteString(p.Analytics.Render(barWidth, now))
	}
	return b.String()
}
