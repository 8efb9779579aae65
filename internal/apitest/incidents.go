package apitest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/go-chi/chi/v5"
)

var statusMessages = map[models.Status]string{
	models.StatusInvestigating: "Your incident '%s' is now under investigation.",
	models.StatusResolved:      "Your incident '%s' has been resolved!",
	models.StatusRejected:      "Your incident '%s' has been reviewed and rejected.",
}

// view decorates an incident with the reporter's display name, as the
// backend does on read.
func (s *Server) viewLocked(inc *models.Incident) models.Incident {
	out := *inc
	if out.UserID.IsZero() {
		out.IsAnonymous = true
		if out.UserName == "" {
			out.UserName = out.ReporterName
		}
		if out.UserName == "" {
			out.UserName = "Anonymous"
		}
		return out
	}
	if a := s.accountLocked(out.UserID); a != nil {
		out.UserName = a.user.Name
	} else {
		out.UserName = "Unknown"
	}
	return out
}

func (s *Server) findLocked(id string) *models.Incident {
	for _, inc := range s.incidents {
		if inc.ID.String() == id {
			return inc
		}
	}
	return nil
}

func validInput(in models.IncidentInput) string {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" ||
		in.Type == "" || strings.TrimSpace(in.Location) == "" {
		return "Title, description, type, and location are required"
	}
	if _, err := models.ParseIncidentType(string(in.Type)); err != nil {
		return "Type must be 'redflag' or 'intervention'"
	}
	return ""
}

func (s *Server) handleListIncidents(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Incident, 0, len(s.incidents))
	for _, inc := range s.incidents {
		out = append(out, s.viewLocked(inc))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateIncident(w http.ResponseWriter, r *http.Request) {
	var in models.IncidentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	if msg := validInput(in); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := models.NewTimestamp(s.now())
	inc := &models.Incident{
		ID:          s.nextID(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Type:        in.Type,
		Category:    in.Category,
		Location:    strings.TrimSpace(in.Location),
		Status:      models.StatusPending,
		UserID:      currentUserID(r),
		MediaURL:    in.MediaURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.incidents = append([]*models.Incident{inc}, s.incidents...)
	writeJSON(w, http.StatusCreated, models.IncidentEnvelope{
		Message:  "Incident created successfully",
		Incident: s.viewLocked(inc),
	})
}

func (s *Server) handleAnonymous(w http.ResponseWriter, r *http.Request) {
	var in models.AnonymousReport
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	if msg := validInput(models.IncidentInput{Title: in.Title, Description: in.Description, Type: in.Type, Location: in.Location}); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := models.NewTimestamp(s.now())
	name := strings.TrimSpace(in.ReporterName)
	if name == "" {
		name = "Anonymous"
	}
	inc := &models.Incident{
		ID:            s.nextID(),
		Title:         in.Title,
		Description:   in.Description,
		Type:          in.Type,
		Location:      in.Location,
		Status:        models.StatusPending,
		ReporterName:  name,
		ReporterEmail: strings.ToLower(strings.TrimSpace(in.ReporterEmail)),
		IsAnonymous:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.incidents = append([]*models.Incident{inc}, s.incidents...)
	writeJSON(w, http.StatusCreated, models.IncidentEnvelope{
		Message:  "Anonymous incident reported successfully",
		Incident: *inc,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st models.Stats
	for _, inc := range s.incidents {
		st.Total++
		switch inc.Status {
		case models.StatusPending:
			st.Pending++
		case models.StatusInvestigating:
			st.Investigating++
		case models.StatusResolved:
			st.Resolved++
		case models.StatusRejected:
			st.Rejected++
		}
		switch inc.Type {
		case models.TypeRedFlag:
			st.RedFlags++
		case models.TypeIntervention:
			st.Interventions++
		}
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleGetIncident(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc := s.findLocked(chi.URLParam(r, "id"))
	if inc == nil {
		writeError(w, http.StatusNotFound, "Incident not found")
		return
	}
	writeJSON(w, http.StatusOK, s.viewLocked(inc))
}

// updateBody distinguishes absent fields from empty ones.
type updateBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
	Category    *string `json:"category"`
	Location    *string `json:"location"`
	MediaURL    *string `json:"media_url"`
	Status      *string `json:"status"`
}

func (s *Server) handleUpdateIncident(w http.ResponseWriter, r *http.Request) {
	var body updateBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	caller := s.current(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	inc := s.findLocked(chi.URLParam(r, "id"))
	if inc == nil {
		writeError(w, http.StatusNotFound, "Incident not found")
		return
	}
	if !inc.OwnedBy(&caller) && !caller.Admin() {
		writeError(w, http.StatusForbidden, "Permission denied")
		return
	}

	if body.Title != nil {
		inc.Title = strings.TrimSpace(*body.Title)
	}
	if body.Description != nil {
		inc.Description = strings.TrimSpace(*body.Description)
	}
	if body.Type != nil {
		if t, err := models.ParseIncidentType(*body.Type); err == nil {
			inc.Type = t
		}
	}
	if body.Category != nil {
		inc.Category = *body.Category
	}
	if body.Location != nil {
		inc.Location = strings.TrimSpace(*body.Location)
	}
	if body.MediaURL != nil {
		inc.MediaURL = *body.MediaURL
	}
	if body.Status != nil && caller.Admin() {
		if st, err := models.ParseStatus(*body.Status); err == nil {
			if st != inc.Status && !inc.UserID.IsZero() {
				if tmpl, ok := statusMessages[st]; ok {
					s.notifyLocked(inc.UserID, inc.ID, fmt.Sprintf(tmpl, inc.Title))
				}
			}
			inc.Status = st
		}
	}
	inc.UpdatedAt = models.NewTimestamp(s.now())

	writeJSON(w, http.StatusOK, models.IncidentEnvelope{
		Message:  "Incident updated successfully",
		Incident: s.viewLocked(inc),
	})
}

func (s *Server) handleDeleteIncident(w http.ResponseWriter, r *http.Request) {
	caller := s.current(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	for i, inc := range s.incidents {
		if inc.ID.String() != id {
			continue
		}
		if !inc.OwnedBy(&caller) && !caller.Admin() {
			writeError(w, http.StatusForbidden, "Permission denied")
			return
		}
		s.incidents = append(s.incidents[:i], s.incidents[i+1:]...)
		writeJSON(w, http.StatusOK, models.Message{Message: "Incident deleted successfully"})
		return
	}
	writeError(w, http.StatusNotFound, "Incident not found")
}
