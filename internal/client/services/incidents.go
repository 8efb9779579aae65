package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/ireporter/internal/client/client"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
)

// IncidentForm is what the create and edit views collect.
type IncidentForm struct {
	Title       string
	Description string
	Type        string
	Category    string
	Location    string
	MediaURL    string
}

func (f IncidentForm) input() (models.IncidentInput, error) {
	in := models.IncidentInput{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Category:    strings.TrimSpace(f.Category),
		Location:    strings.TrimSpace(f.Location),
		MediaURL:    strings.TrimSpace(f.MediaURL),
	}
	if in.Title == "" || in.Description == "" || strings.TrimSpace(f.Type) == "" || in.Location == "" {
		return in, invalid("Title, description, type, and location are required")
	}
	t, err := models.ParseIncidentType(f.Type)
	if err != nil {
		return in, invalid("Type must be 'redflag' or 'intervention'")
	}
	in.Type = t
	if in.Category != "" && !models.ValidCategory(t, in.Category) {
		return in, invalid("Unknown category for " + t.Label())
	}
	return in, nil
}

// AnonymousForm is the public report form. Contact fields are optional.
type AnonymousForm struct {
	Title         string
	Description   string
	Type          string
	Location      string
	ReporterName  string
	ReporterEmail string
}

// IncidentService defines incident operations for the CLI.
type IncidentService interface {
	List(ctx context.Context) ([]models.Incident, error)
	Get(ctx context.Context, id models.ID) (*models.Incident, error)
	Create(ctx context.Context, form IncidentForm) (*models.Incident, error)
	Update(ctx context.Context, id models.ID, form IncidentForm) (*models.Incident, error)
	ChangeStatus(ctx context.Context, id models.ID, status string) (*models.Incident, error)
	Delete(ctx context.Context, id models.ID) error
	ReportAnonymously(ctx context.Context, form AnonymousForm) (*models.Incident, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

type incidentService struct {
	api   client.IncidentAPI
	guard *SessionGuard
}

// NewIncidentService constructs an IncidentService over api. guard may be nil.
func NewIncidentService(api client.IncidentAPI, guard *SessionGuard) IncidentService {
	return &incidentService{api: api, guard: guard}
}

func requireID(id models.ID) error {
	if id.IsZero() {
		return invalid("Incident id is required")
	}
	return nil
}

func (s *incidentService) List(ctx context.Context) ([]models.Incident, error) {
	list, err := s.api.List(ctx)
	return list, s.guard.check(ctx, err)
}

func (s *incidentService) Get(ctx context.Context, id models.ID) (*models.Incident, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	inc, err := s.api.Get(ctx, id)
	return inc, s.guard.check(ctx, err)
}

func (s *incidentService) Create(ctx context.Context, form IncidentForm) (*models.Incident, error) {
	in, err := form.input()
	if err != nil {
		return nil, err
	}
	inc, err := s.api.Create(ctx, in)
	return inc, s.guard.check(ctx, err)
}

func (s *incidentService) Update(ctx context.Context, id models.ID, form IncidentForm) (*models.Incident, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	in, err := form.input()
	if err != nil {
		return nil, err
	}
	inc, err := s.api.Update(ctx, id, in)
	return inc, s.guard.check(ctx, err)
}

func (s *incidentService) ChangeStatus(ctx context.Context, id models.ID, status string) (*models.Incident, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	st, err := models.ParseStatus(status)
	if err != nil {
		return nil, invalid("Status must be pending, investigating, resolved or rejected")
	}
	inc, err := s.api.ChangeStatus(ctx, id, st)
	return inc, s.guard.check(ctx, err)
}

func (s *incidentService) Delete(ctx context.Context, id models.ID) error {
	if err := requireID(id); err != nil {
		return err
	}
	return s.guard.check(ctx, s.api.Delete(ctx, id))
}

// ReportAnonymously never touches the session, so it bypasses the guard.
func (s *incidentService) ReportAnonymously(ctx context.Context, form AnonymousForm) (*models.Incident, error) {
	in, err := IncidentForm{
		Title: form.Title, Description: form.Description, Type: form.Type, Location: form.Location,
	}.input()
	if err != nil {
		return nil, err
	}
	return s.api.ReportAnonymously(ctx, models.AnonymousReport{
		Title:         in.Title,
		Description:   in.Description,
		Type:          in.Type,
		Location:      in.Location,
		ReporterName:  strings.TrimSpace(form.ReporterName),
		ReporterEmail: strings.TrimSpace(form.ReporterEmail),
	})
}

func (s *incidentService) Stats(ctx context.Context) (*models.Stats, error) {
	st, err := s.api.Stats(ctx)
	return st, s.guard.check(ctx, err)
}
