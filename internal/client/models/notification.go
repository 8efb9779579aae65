package models

const NotificationStatusUpdate = "status_update"

// Notification tells a user something happened, usually a status change on
// one of their incidents.
type Notification struct {
	ID         ID        `json:"id"`
	Message    string    `json:"message"`
	Type       string    `json:"type"`
	IncidentID ID        `json:"incident_id"`
	Read       bool      `json:"read"`
	CreatedAt  Timestamp `json:"created_at"`
}

// NotificationList is the /notifications response.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}
