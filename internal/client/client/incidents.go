package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/ireporter/internal/client/models"
)

// IncidentAPI covers incident CRUD, status changes, anonymous reports and
// aggregate statistics.
type IncidentAPI interface {
	List(ctx context.Context) ([]models.Incident, error)
	Get(ctx context.Context, id models.ID) (*models.Incident, error)
	Create(ctx context.Context, in models.IncidentInput) (*models.Incident, error)
	Update(ctx context.Context, id models.ID, in models.IncidentInput) (*models.Incident, error)
	ChangeStatus(ctx context.Context, id models.ID, status models.Status) (*models.Incident, error)
	Delete(ctx context.Context, id models.ID) error
	ReportAnonymously(ctx context.Context, r models.AnonymousReport) (*models.Incident, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

type Incidents struct {
	c *HTTPClient
}

var _ IncidentAPI = (*Incidents)(nil)

func incidentPath(id models.ID) string {
	return "/incidents/" + url.PathEscape(id.String())
}

func (i *Incidents) List(ctx context.Context) ([]models.Incident, error) {
	var list []models.Incident
	if err := i.c.do(ctx, http.MethodGet, "/incidents", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (i *Incidents) Get(ctx context.Context, id models.ID) (*models.Incident, error) {
	var inc models.Incident
	if err := i.c.do(ctx, http.MethodGet, incidentPath(id), nil, &inc); err != nil {
		return nil, err
	}
	return &inc, nil
}

func (i *Incidents) Create(ctx context.Context, in models.IncidentInput) (*models.Incident, error) {
	var env models.IncidentEnvelope
	if err := i.c.do(ctx, http.MethodPost, "/incidents", in, &env); err != nil {
		return nil, err
	}
	return &env.Incident, nil
}

func (i *Incidents) Update(ctx context.Context, id models.ID, in models.IncidentInput) (*models.Incident, error) {
	var env models.IncidentEnvelope
	if err := i.c.do(ctx, http.MethodPut, incidentPath(id), in, &env); err != nil {
		return nil, err
	}
	return &env.Incident, nil
}

// ChangeStatus uses the same endpoint as Update with a status-only body; the
// backend honors it for admins only.
func (i *Incidents) ChangeStatus(ctx context.Context, id models.ID, status models.Status) (*models.Incident, error) {
	var env models.IncidentEnvelope
	if err := i.c.do(ctx, http.MethodPut, incidentPath(id), models.StatusChange{Status: status}, &env); err != nil {
		return nil, err
	}
	return &env.Incident, nil
}

func (i *Incidents) Delete(ctx context.Context, id models.ID) error {
	return i.c.do(ctx, http.MethodDelete, incidentPath(id), nil, nil)
}

func (i *Incidents) ReportAnonymously(ctx context.Context, r models.AnonymousReport) (*models.Incident, error) {
	var env models.IncidentEnvelope
	if err := i.c.do(anonymous(ctx), http.MethodPost, "/incidents/anonymous", r, &env); err != nil {
		return nil, err
	}
	return &env.Incident, nil
}

func (i *Incidents) Stats(ctx context.Context) (*models.Stats, error) {
	var s models.Stats
	if err := i.c.do(ctx, http.MethodGet, "/incidents/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
