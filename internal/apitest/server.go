// Package apitest runs an in-memory implementation of the iReporter REST API
// for tests. It follows the production backend's contract: JWT bearer auth,
// {"error": msg} failure bodies, admin-only routes, anonymous reports that
// are linked on registration, and status-change notifications.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Request is what the server saw of one call.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type account struct {
	user     models.User
	password []byte
}

type fault struct {
	status  int
	message string
}

// Server is a running fake backend. All methods are safe for concurrent use.
type Server struct {
	*httptest.Server

	secret []byte
	ttl    time.Duration

	mu            sync.Mutex
	seq           int
	now           func() time.Time
	users         []*account
	incidents     []*models.Incident
	notifications map[models.ID][]*models.Notification
	verifyTokens  map[string]models.ID
	requests      []Request
	faults        map[string]fault
}

// New starts a server and registers its shutdown with t.
func New(t testing.TB) *Server {
	s := &Server{
		secret:        []byte("apitest-secret"),
		ttl:           time.Hour,
		now:           time.Now,
		notifications: make(map[models.ID][]*models.Notification),
		verifyTokens:  make(map[string]models.ID),
		faults:        make(map[string]fault),
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to hand to the client.
func (s *Server) BaseURL() string { return s.URL + "/api" }

// SetClock replaces the time source used for created_at/updated_at.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountRequests counts received requests for method and path. path is
// relative to the API root ("/notifications"); a leading "/api" is accepted
// too.
func (s *Server) CountRequests(method, path string) int {
	path = strings.TrimPrefix(path, "/api")
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == "/api"+path {
			n++
		}
	}
	return n
}

// FailNext makes the next request to method+path answer with status and
// {"error": message}.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[method+" /api"+path] = fault{status: status, message: message}
}

func (s *Server) nextID() models.ID {
	s.seq++
	return models.ID(fmt.Sprintf("%024x", s.seq))
}

// AddUser seeds an account and returns its normalized view.
func (s *Server) AddUser(name, email, password string, admin bool) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{
		ID:            s.nextID(),
		Name:          name,
		Email:         strings.ToLower(email),
		Role:          models.RoleUser,
		EmailVerified: true,
		CreatedAt:     models.NewTimestamp(s.now()),
	}
	if admin {
		u.Role, u.IsAdmin = models.RoleAdmin, true
	}
	s.users = append(s.users, &account{user: u, password: hash})
	return u
}

// AddIncident seeds an incident. Missing id, status and timestamps are
// filled in. Incidents are kept newest first, as the backend returns them.
func (s *Server) AddIncident(inc models.Incident) models.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inc.ID.IsZero() {
		inc.ID = s.nextID()
	}
	if inc.Status == "" {
		inc.Status = models.StatusPending
	}
	if inc.CreatedAt.IsZero() {
		inc.CreatedAt = models.NewTimestamp(s.now())
	}
	if inc.UpdatedAt.IsZero() {
		inc.UpdatedAt = inc.CreatedAt
	}
	if inc.UserID.IsZero() {
		inc.IsAnonymous = true
	}
	cp := inc
	s.incidents = append([]*models.Incident{&cp}, s.incidents...)
	return cp
}

// AddNotification seeds an unread notification for userID.
func (s *Server) AddNotification(userID, incidentID models.ID, message string) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.notifyLocked(userID, incidentID, message)
}

func (s *Server) notifyLocked(userID, incidentID models.ID, message string) *models.Notification {
	n := &models.Notification{
		ID:         s.nextID(),
		Message:    message,
		Type:       models.NotificationStatusUpdate,
		IncidentID: incidentID,
		CreatedAt:  models.NewTimestamp(s.now()),
	}
	s.notifications[userID] = append([]*models.Notification{n}, s.notifications[userID]...)
	return n
}

// SetRole changes a user's role server-side, as another admin would.
func (s *Server) SetRole(id models.ID, role models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.accountLocked(id); a != nil {
		a.user.Role, a.user.IsAdmin = role, role == models.RoleAdmin
	}
}

// IssueVerification registers a one-time email verification token for id.
func (s *Server) IssueVerification(id models.ID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok := uuid.NewString()
	s.verifyTokens[tok] = id
	if a := s.accountLocked(id); a != nil {
		a.user.EmailVerified = false
	}
	return tok
}

// Incident returns the stored incident with id.
func (s *Server) Incident(id models.ID) (models.Incident, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inc := range s.incidents {
		if inc.ID == id {
			return *inc, true
		}
	}
	return models.Incident{}, false
}

// Token mints a valid bearer token for userID.
func (s *Server) Token(userID models.ID) string {
	return s.TokenExpiringAt(userID, time.Now().Add(s.ttl))
}

// TokenExpiringAt mints a token with an explicit exp claim.
func (s *Server) TokenExpiringAt(userID models.ID, exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ID:        uuid.NewString(),
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) accountLocked(id models.ID) *account {
	for _, a := range s.users {
		if a.user.ID == id {
			return a
		}
	}
	return nil
}

func (s *Server) accountByEmailLocked(email string) *account {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range s.users {
		if a.user.Email == email {
			return a
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "iReporter test backend", "status": "running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/register", s.handleRegister)
		r.Post("/users/login", s.handleLogin)
		r.Post("/users/verify-email", s.handleVerifyEmail)
		r.Post("/users/resend-verification", s.handleResendVerification)
		r.Post("/incidents/anonymous", s.handleAnonymous)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/users/me", s.handleMe)
			r.Put("/users/profile", s.handleProfile)

			r.Get("/incidents", s.handleListIncidents)
			r.Post("/incidents", s.handleCreateIncident)
			r.Get("/incidents/stats", s.handleStats)
			r.Get("/incidents/{id}", s.handleGetIncident)
			r.Put("/incidents/{id}", s.handleUpdateIncident)
			r.Delete("/incidents/{id}", s.handleDeleteIncident)

			r.Get("/notifications", s.handleListNotifications)
			r.Put("/notifications/read-all", s.handleReadAll)
			r.Put("/notifications/{id}/read", s.handleReadOne)

			r.With(s.requireAdmin).Get("/admin/users", s.handleListUsers)
			r.With(s.requireAdmin).Patch("/admin/users/{id}/role", s.handleUpdateRole)
			r.With(s.requireAdmin).Delete("/users/{id}", s.handleDeleteUser)
		})
	})

	return r
}

// record logs the request and serves any queued fault for it.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		key := r.Method + " " + r.URL.Path
		f, ok := s.faults[key]
		if ok {
			delete(s.faults, key)
		}
		s.mu.Unlock()

		if ok {
			writeError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}
