package apitest

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type ctxKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "Missing Authorization Header")
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			}
			writeError(w, http.StatusUnauthorized, msg)
			return
		}

		s.mu.Lock()
		a := s.accountLocked(models.ID(claims.Subject))
		s.mu.Unlock()
		if a == nil {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, a.user.ID)))
	})
}

func currentUserID(r *http.Request) models.ID {
	id, _ := r.Context().Value(ctxKey{}).(models.ID)
	return id
}

// current returns a snapshot of the caller's account.
func (s *Server) current(r *http.Request) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.accountLocked(currentUserID(r)); a != nil {
		return a.user
	}
	return models.User{}
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.current(r).Admin() {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.Registration
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email, and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	if s.accountByEmailLocked(req.Email) != nil {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}
	first := len(s.users) == 0
	u := models.User{
		ID:            s.nextID(),
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Role:          models.RoleUser,
		EmailVerified: true,
		CreatedAt:     models.NewTimestamp(s.now()),
	}
	if first {
		u.Role, u.IsAdmin = models.RoleAdmin, true
	}
	s.users = append(s.users, &account{user: u, password: hash})

	linked := 0
	for _, inc := range s.incidents {
		if inc.UserID.IsZero() && strings.EqualFold(inc.ReporterEmail, u.Email) {
			inc.UserID = u.ID
			linked++
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, models.AuthResponse{
		Message:         "User registered and logged in successfully",
		Token:           s.Token(u.ID),
		User:            &u,
		LinkedIncidents: linked,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	s.mu.Lock()
	a := s.accountByEmailLocked(req.Email)
	var snapshot account
	if a != nil {
		snapshot = *a
	}
	s.mu.Unlock()

	if a == nil || bcrypt.CompareHashAndPassword(snapshot.password, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	u := snapshot.user
	writeJSON(w, http.StatusOK, models.AuthResponse{
		Message: "Login successful",
		Token:   s.Token(u.ID),
		User:    &u,
	})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	_ = decodeJSON(r, &req)

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.verifyTokens[req.Token]
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid or expired verification token")
		return
	}
	delete(s.verifyTokens, req.Token)
	a := s.accountLocked(id)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	a.user.EmailVerified = true
	u := a.user
	writeJSON(w, http.StatusOK, models.AuthResponse{
		Message: "Email verified successfully",
		Token:   s.Token(u.ID),
		User:    &u,
	})
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	writeJSON(w, http.StatusOK, models.Message{Message: "Verification email sent"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.current(r))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accountLocked(currentUserID(r))
	if req.Name != "" {
		a.user.Name = req.Name
	}
	if req.Email != "" {
		a.user.Email = strings.ToLower(req.Email)
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Profile updated", "user": a.user})
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, a := range s.users {
		out = append(out, a.user)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	_ = decodeJSON(r, &req)
	role, err := models.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accountLocked(models.ID(chi.URLParam(r, "id")))
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	a.user.Role, a.user.IsAdmin = role, role == models.RoleAdmin
	writeJSON(w, http.StatusOK, models.Message{Message: "Role updated"})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.users {
		if a.user.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			writeJSON(w, http.StatusOK, models.Message{Message: "User deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "User not found")
}
