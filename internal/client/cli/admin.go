package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/ireporter/internal/client/guard"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/dmitrijs2005/ireporter/internal/client/services"
	"github.com/dmitrijs2005/ireporter/internal/client/views"
)

const (
	tabAnalytics = "analytics"
	tabUsers     = "users"
)

// Admin opens the admin panel on the given tab (analytics by default).
func (a *App) Admin(ctx context.Context, args []string) error {
	tab := tabAnalytics
	if len(args) > 0 && args[0] == tabUsers {
		tab = tabUsers
	}
	a.mu.Lock()
	a.adminTab = tab
	a.mu.Unlock()
	a.navigate(ctx, guard.PathAdmin)
	return nil
}

func (a *App) showAdmin(ctx context.Context) error {
	p, out := views.LoadAdminPanel(ctx, a.users, a.incidents, a.session)
	if a.follow(ctx, out) {
		return nil
	}
	for _, msg := range p.Notices() {
		a.notices.Error(msg)
	}

	a.mu.Lock()
	tab := a.adminTab
	a.mu.Unlock()
	a.println(views.RenderAdminPanel(p, tab, a.session.User(), a.barWidth(), a.now()))
	return nil
}

func (a *App) barWidth() int {
	w := a.viewWidth() / 4
	switch {
	case w < 10:
		return 10
	case w > 40:
		return 40
	}
	return w
}

// Role changes another user's role. The admin's own session is untouched
// until it is refreshed.
func (a *App) Role(ctx context.Context, args []string) error {
	if len(args) < 2 {
		a.println("Usage: role <user id> <user|admin>")
		return nil
	}
	if !a.session.IsAdmin() {
		return a.fail(views.NoticeAdminRequired)
	}

	msg, err := views.ChangeUserRole(ctx, a.users, models.ID(args[0]), args[1])
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return a.fail(services.Message(err, views.NoticeRoleFailed))
		}
		return a.fail(views.NoticeRoleFailed)
	}
	a.notices.Success(msg)
	return a.Admin(ctx, []string{tabUsers})
}

// DeleteUser removes an account after confirmation. Admins only.
func (a *App) DeleteUser(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: deluser <user id>")
		return nil
	}
	if !a.session.IsAdmin() {
		return a.fail(views.NoticeAdminRequired)
	}

	ok, err := Confirm(a.reader, "Are you sure you want to delete this user?", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.users.DeleteUser(ctx, models.ID(args[0])); err != nil {
		return a.fail(views.NoticeDeleteUser)
	}
	a.notices.Success("User deleted successfully")
	return a.Admin(ctx, []string{tabUsers})
}
