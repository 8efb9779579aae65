package models

import (
	"fmt"
	"strings"
)

type IncidentType string

const (
	TypeRedFlag      IncidentType = "redflag"
	TypeIntervention IncidentType = "intervention"
)

// IncidentTypes lists the known types in display order.
var IncidentTypes = []IncidentType{TypeRedFlag, TypeIntervention}

func ParseIncidentType(s string) (IncidentType, error) {
	t := IncidentType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range IncidentTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown incident type %q", s)
}

// Label is the human form of the type.
func (t IncidentType) Label() string {
	switch t {
	case TypeRedFlag:
		return "Red Flag"
	case TypeIntervention:
		return "Intervention"
	}
	return string(t)
}

type Status string

const (
	StatusPending       Status = "pending"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
	StatusRejected      Status = "rejected"
)

// Statuses lists the known statuses in workflow order.
var Statuses = []Status{StatusPending, StatusInvestigating, StatusResolved, StatusRejected}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Incident is a citizen report. UserID is empty for anonymous reports.
type Incident struct {
	ID            ID           `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Type          IncidentType `json:"type"`
	Category      string       `json:"category,omitempty"`
	Location      string       `json:"location"`
	Status        Status       `json:"status"`
	UserID        ID           `json:"user_id"`
	UserName      string       `json:"user_name,omitempty"`
	ReporterName  string       `json:"reporter_name,omitempty"`
	ReporterEmail string       `json:"reporter_email,omitempty"`
	IsAnonymous   bool         `json:"is_anonymous,omitempty"`
	MediaURL      string       `json:"media_url,omitempty"`
	CreatedAt     Timestamp    `json:"created_at"`
	UpdatedAt     Timestamp    `json:"updated_at"`
}

// Anonymous reports whether the incident has no owning account.
func (i Incident) Anonymous() bool {
	return i.IsAnonymous || i.UserID.IsZero()
}

// OwnedBy reports whether u owns the incident. Anonymous incidents are owned
// by nobody.
func (i Incident) OwnedBy(u *User) bool {
	return u != nil && !u.ID.IsZero() && !i.UserID.IsZero() && i.UserID == u.ID
}

// Reporter is the display name of whoever filed the incident.
func (i Incident) Reporter() string {
	switch {
	case i.UserName != "":
		return i.UserName
	case i.ReporterName != "":
		return i.ReporterName
	}
	return "Anonymous"
}

// IncidentInput is the body for creating or editing an incident.
type IncidentInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        IncidentType `json:"type"`
	Category    string       `json:"category,omitempty"`
	Location    string       `json:"location"`
	MediaURL    string       `json:"media_url,omitempty"`
}

// StatusChange is the admin-only body that moves an incident along the
// workflow.
type StatusChange struct {
	Status Status `json:"status"`
}

// AnonymousReport is filed without an account. Contact details are optional;
// a later registration with the same email links the report.
type AnonymousReport struct {
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Type          IncidentType `json:"type"`
	Location      string       `json:"location"`
	ReporterName  string       `json:"reporter_name,omitempty"`
	ReporterEmail string       `json:"reporter_email,omitempty"`
}

// IncidentEnvelope wraps the incident returned by create and update calls.
type IncidentEnvelope struct {
	Message  string   `json:"message"`
	Incident Incident `json:"incident"`
}

// Stats is the aggregate returned by /incidents/stats.
type Stats struct {
	Total         int `json:"total"`
	Pending       int `json:"pending"`
	Investigating int `json:"investigating"`
	Resolved      int `json:"resolved"`
	Rejected      int `json:"rejected"`
	RedFlags      int `json:"redflags"`
	Interventions int `json:"interventions"`
}
