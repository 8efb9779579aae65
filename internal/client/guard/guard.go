// Package guard decides whether a view may be entered.
//
// Decisions depend only on whether a token is persisted, never on the user
// snapshot, so a guard check costs no network round trip.
package guard

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	PathRoot           = "/"
	PathLogin          = "/login"
	PathRegister       = "/register"
	PathVerifyEmail    = "/verify-email"
	PathReport         = "/report"
	PathDashboard      = "/dashboard"
	PathIncidents      = "/incidents"
	PathCreateIncident = "/incidents/create"
	PathIncident       = "/incidents/{id}"
	PathEditIncident   = "/incidents/{id}/edit"
	PathAdmin          = "/admin"
	PathHelp           = "/help"
	PathTest           = "/test"
)

// Class is the access class of a view.
type Class int

const (
	// Public views are open to everyone.
	Public Class = iota
	// UnauthenticatedOnly views send a logged-in user to the dashboard.
	UnauthenticatedOnly
	// AuthenticatedOnly views send an anonymous user to the login view.
	AuthenticatedOnly
)

type Route struct {
	Pattern string
	Class   Class
}

// Routes lists every view the client knows.
var Routes = []Route{
	{PathLogin, UnauthenticatedOnly},
	{PathRegister, UnauthenticatedOnly},
	{PathVerifyEmail, Public},
	{PathReport, Public},
	{PathDashboard, AuthenticatedOnly},
	{PathIncidents, AuthenticatedOnly},
	{PathCreateIncident, AuthenticatedOnly},
	{PathIncident, AuthenticatedOnly},
	{PathEditIncident, AuthenticatedOnly},
	{PathAdmin, AuthenticatedOnly},
	{PathHelp, AuthenticatedOnly},
	{PathTest, AuthenticatedOnly},
}

// Decision is the outcome of a guard check. When Allow is false, Redirect
// holds the path to go to instead. Pattern and Params describe the matched
// route and are empty for unknown paths.
type Decision struct {
	Allow    bool
	Redirect string
	Pattern  string
	Params   map[string]string
}

// Param returns the named path parameter, e.g. "id" for /incidents/{id}.
func (d Decision) Param(name string) string { return d.Params[name] }

type Guard struct {
	mux     *chi.Mux
	classes map[string]Class
}

func New(routes []Route) *Guard {
	g := &Guard{mux: chi.NewRouter(), classes: make(map[string]Class, len(routes))}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, r := range routes {
		g.mux.Get(r.Pattern, noop)
		g.classes[r.Pattern] = r.Class
	}
	return g
}

var std = New(Routes)

// Decide checks path against the standard routes.
func Decide(path string, tokenPresent bool) Decision {
	return std.Decide(path, tokenPresent)
}

func (g *Guard) Decide(path string, tokenPresent bool) Decision {
	path = Clean(path)

	rctx := chi.NewRouteContext()
	if path == PathRoot || !g.mux.Match(rctx, http.MethodGet, path) {
		return Decision{Redirect: PathLogin}
	}

	pattern := rctx.RoutePattern()
	d := Decision{Pattern: pattern, Params: make(map[string]string, len(rctx.URLParams.Keys))}
	for i, k := range rctx.URLParams.Keys {
		d.Params[k] = rctx.URLParams.Values[i]
	}

	switch g.classes[pattern] {
	case AuthenticatedOnly:
		if !tokenPresent {
			d.Redirect = PathLogin
			return d
		}
	case UnauthenticatedOnly:
		if tokenPresent {
			d.Redirect = PathDashboard
			return d
		}
	}
	d.Allow = true
	return d
}

// Clean normalizes user-typed paths: a leading slash is added, a query is
// dropped, and a trailing slash is removed.
func Clean(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathRoot
		}
	}
	return path
}

// IncidentPath is the detail view path for id.
func IncidentPath(id string) string { return PathIncidents + "/" + id }

// EditIncidentPath is the edit view path for id.
func EditIncidentPath(id string) string { return IncidentPath(id) + "/edit" }
