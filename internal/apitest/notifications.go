package apitest

import (
	"net/http"

	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := models.NotificationList{Notifications: []models.Notification{}}
	for _, n := range s.notifications[currentUserID(r)] {
		list.Notifications = append(list.Notifications, *n)
		if !n.Read {
			list.UnreadCount++
		}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleReadOne(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications[currentUserID(r)] {
		if n.ID == id {
			n.Read = true
			writeJSON(w, http.StatusOK, models.Message{Message: "Notification marked as read"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Notification not found")
}

func (s *Server) handleReadAll(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications[currentUserID(r)] {
		if !n.Read {
			n.Read = true
			count++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "All notifications marked as read", "count": count})
}
