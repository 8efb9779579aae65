package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/ireporter/internal/client/guard"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/dmitrijs2005/ireporter/internal/client/services"
)

const (
	NoticeLoadIncident  = "Failed to load incident"
	NoticeLoadIncidents = "Failed to load incidents"
	NoticeEditOwnOnly   = "You can only edit your own incidents"
)

// Viewer is the session as seen by views. *session.Store implements it.
type Viewer interface {
	User() *models.User
	IsAdmin() bool
}

// Filter narrows the incident list by type or status.
type Filter string

const (
	FilterAll           Filter = "all"
	FilterRedFlag       Filter = Filter(models.TypeRedFlag)
	FilterIntervention  Filter = Filter(models.TypeIntervention)
	FilterPending       Filter = Filter(models.StatusPending)
	FilterInvestigating Filter = Filter(models.StatusInvestigating)
	FilterResolved      Filter = Filter(models.StatusResolved)
	FilterRejected      Filter = Filter(models.StatusRejected)
)

var Filters = []Filter{
	FilterAll, FilterRedFlag, FilterIntervention,
	FilterPending, FilterInvestigating, FilterResolved, FilterRejected,
}

// ParseFilter accepts any case. An empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if Filter(s) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Match reports whether inc passes f. Type and status are compared without
// regard to case.
func (f Filter) Match(inc models.Incident) bool {
	if f == FilterAll {
		return true
	}
	return strings.EqualFold(string(inc.Type), string(f)) || strings.EqualFold(string(inc.Status), string(f))
}

// Apply returns the incidents matching f in their original order.
func (f Filter) Apply(list []models.Incident) []models.Incident {
	out := make([]models.Incident, 0, len(list))
	for _, inc := range list {
		if f.Match(inc) {
			out = append(out, inc)
		}
	}
	return out
}

// LoadIncidentList fetches the whole collection once. Non-admins only keep
// their own incidents.
func LoadIncidentList(ctx context.Context, svc services.IncidentService, v Viewer) ([]models.Incident, error) {
	all, err := svc.List(ctx)
	if err != nil {
		return nil, err
	}
	return VisibleTo(all, v), nil
}

// VisibleTo drops incidents v may not see in the list.
func VisibleTo(list []models.Incident, v Viewer) []models.Incident {
	if v.IsAdmin() {
		return list
	}
	u := v.User()
	out := make([]models.Incident, 0, len(list))
	if u == nil {
		return out
	}
	for _, inc := range list {
		if inc.OwnedBy(u) {
			out = append(out, inc)
		}
	}
	return out
}

// Actions are the per-row controls of the list and detail views.
type Actions struct {
	View         bool
	Edit         bool
	Delete       bool
	ChangeStatus bool
}

func RowActions(inc models.Incident, v Viewer) Actions {
	admin := v.IsAdmin()
	owner := inc.OwnedBy(v.User())
	return Actions{
		View:         true,
		Edit:         owner || admin,
		Delete:       owner || admin,
		ChangeStatus: admin,
	}
}

// Outcome is the result of entering a view that may bounce the user
// elsewhere. When Redirect is set, Notice explains why.
type Outcome struct {
	Incident *models.Incident
	Redirect string
	Notice   string
}

// LoadDetail loads the detail view for id.
func LoadDetail(ctx context.Context, svc services.IncidentService, id models.ID) Outcome {
	inc, err := svc.Get(ctx, id)
	if err != nil || inc == nil {
		return Outcome{Redirect: guard.PathIncidents, Notice: NoticeLoadIncident}
	}
	return Outcome{Incident: inc}
}

// LoadEdit loads the edit view for id, refusing non-owners unless v is an
// admin.
func LoadEdit(ctx context.Context, svc services.IncidentService, v Viewer, id models.ID) Outcome {
	out := LoadDetail(ctx, svc, id)
	if out.Redirect != "" {
		return out
	}
	if !RowActions(*out.Incident, v).Edit {
		return Outcome{Redirect: guard.PathIncidents, Notice: NoticeEditOwnOnly}
	}
	return out
}

// FormFrom pre-fills the edit form from inc.
func FormFrom(inc models.Incident) services.IncidentForm {
	t := string(inc.Type)
	if t == "" {
		t = string(models.TypeRedFlag)
	}
	return services.IncidentForm{
		Title:       inc.Title,
		Description: inc.Description,
		Type:        t,
		Category:    inc.Category,
		Location:    inc.Location,
		MediaURL:    inc.MediaURL,
	}
}
