package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/ireporter/internal/client/guard"
	"github.com/dmitrijs2005/ireporter/internal/client/layout"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/dmitrijs2005/ireporter/internal/client/poller"
	"github.com/dmitrijs2005/ireporter/internal/client/views"
)

const maxRedirects = 3

// tokenPresent is what the guard looks at: the persisted token, not the
// user snapshot.
func (a *App) tokenPresent(ctx context.Context) bool {
	tok, err := a.session.Token(ctx)
	return err == nil && tok != ""
}

// resolve runs path through the guard, following redirects.
func (a *App) resolve(ctx context.Context, path string) (string, guard.Decision) {
	path = guard.Clean(path)
	d := guard.Decide(path, a.tokenPresent(ctx))
	for i := 0; d.Redirect != "" && i < maxRedirects; i++ {
		path = d.Redirect
		d = guard.Decide(path, a.tokenPresent(ctx))
	}
	return path, d
}

// navigate moves to path and renders the view the guard lets through,
// framed by the chrome for the new state. The view's error has already been
// shown as a notice; it is returned for commands that report it.
func (a *App) navigate(ctx context.Context, path string) error {
	target, d := a.resolve(ctx, path)
	a.setPath(target)

	chrome := a.chrome(target)
	if h := chrome.Header(a.viewWidth(), poller.Badge(a.poller.Snapshot().Unread)); h != "" {
		a.println(h)
	}
	var err error
	if d.Allow {
		if err = a.render(ctx, d); err != nil {
			a.log.Debug(ctx, "view failed", "path", target, "error", err)
		}
	}
	if f := chrome.Footer(a.viewWidth()); f != "" {
		a.println(f)
	}
	return err
}

// enter navigates to path and reports whether the guard allowed it, so
// commands that prompt for input can bail out when redirected.
func (a *App) enter(ctx context.Context, path string) bool {
	target, _ := a.resolve(ctx, path)
	if target != guard.Clean(path) {
		a.navigate(ctx, path)
		return false
	}
	a.setPath(target)
	a.printHeader(target)
	return true
}

// printHeader redraws the chrome above the view at path: offline banner and
// notification bell.
func (a *App) printHeader(path string) {
	if h := a.chrome(path).Header(a.viewWidth(), poller.Badge(a.poller.Snapshot().Unread)); h != "" {
		a.println(h)
	}
}

func (a *App) chrome(path string) layout.Chrome {
	return layout.Compose(layout.State{
		Width:         a.viewWidth(),
		Online:        a.online(),
		Authenticated: a.session.IsAuthenticated(),
		Admin:         a.session.IsAdmin(),
		Path:          path,
	})
}

func (a *App) viewWidth() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.width
}

// render draws the view matched by d. Views that need input (create, edit,
// report) run their prompts here.
func (a *App) render(ctx context.Context, d guard.Decision) error {
	switch d.Pattern {
	case guard.PathLogin:
		a.println("Type 'login' to sign in, 'register' to create an account or 'report' to report anonymously.")
		a.println(views.RenderTips(guard.PathLogin))
	case guard.PathRegister:
		a.println("Type 'register' to create an account.")
		a.println(views.RenderTips(guard.PathRegister))
	case guard.PathVerifyEmail:
		a.println("Type 'verify <token>' with the token from your email, or 'resend <email>' for a new one.")
	case guard.PathReport:
		return a.reportForm(ctx)
	case guard.PathDashboard:
		return a.showDashboard(ctx)
	case guard.PathIncidents:
		return a.showList(ctx)
	case guard.PathCreateIncident:
		return a.createForm(ctx)
	case guard.PathIncident:
		return a.showDetail(ctx, models.ID(d.Param("id")))
	case guard.PathEditIncident:
		return a.editForm(ctx, models.ID(d.Param("id")))
	case guard.PathAdmin:
		return a.showAdmin(ctx)
	case guard.PathHelp:
		a.mu.Lock()
		topic := a.helpTopic
		a.mu.Unlock()
		a.println(views.RenderHelp(topic))
	case guard.PathTest:
		return a.showDiagnostics(ctx)
	}
	return nil
}

// follow shows the notice of a view that bounced and moves on.
func (a *App) follow(ctx context.Context, out views.Outcome) bool {
	if out.Redirect == "" {
		return false
	}
	if out.Notice != "" {
		a.notices.Error(out.Notice)
	}
	a.navigate(ctx, out.Redirect)
	return true
}

// Go navigates to an arbitrary view path.
func (a *App) Go(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: go <path>  (e.g. go /dashboard)")
		return nil
	}
	a.navigate(ctx, args[0])
	return nil
}

// Width sets the simulated viewport width, switching between the desktop
// and mobile layouts.
func (a *App) Width(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println(fmt.Sprintf("Viewport width: %d (mobile at %d and below)", a.viewWidth(), layout.MobileBreakpoint))
		return nil
	}
	w, err := strconv.Atoi(args[0])
	if err != nil || w <= 0 {
		a.notices.Error("Width must be a positive number")
		return fmt.Errorf("invalid width %q", args[0])
	}
	a.mu.Lock()
	a.width = w
	a.mu.Unlock()
	a.navigate(ctx, a.currentPath())
	return nil
}

// Guide opens the help view at topic.
func (a *App) Guide(ctx context.Context, args []string) error {
	topic := ""
	if len(args) > 0 {
		topic = args[0]
	}
	a.mu.Lock()
	a.helpTopic = topic
	a.mu.Unlock()
	a.navigate(ctx, guard.PathHelp)
	return nil
}

func (a *App) showDiagnostics(ctx context.Context) error {
	a.println("API base URL: " + a.config.APIBaseURL)
	err := a.api.Ping(ctx)
	if err != nil {
		a.println("Backend: unreachable (" + err.Error() + ")")
	} else {
		a.println("Backend: reachable")
	}
	if a.uploader != nil {
		a.println("Attachments: enabled (bucket " + a.config.Media.Bucket + ")")
	} else {
		a.println("Attachments: disabled")
	}
	return err
}
