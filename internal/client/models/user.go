package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the normalized privilege level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole accepts "user" or "admin" in any case.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User is an account as reported by the backend.
type User struct {
	ID            ID        `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	IsAdmin       bool      `json:"is_admin"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     Timestamp `json:"created_at"`
}

// Normalize folds the backend's two admin markers into Role. A user is an
// admin when role is "admin" or is_admin is true; afterwards both fields
// agree.
func (u *User) Normalize() {
	admin := strings.EqualFold(string(u.Role), string(RoleAdmin)) || u.IsAdmin
	if admin {
		u.Role = RoleAdmin
	} else {
		u.Role = RoleUser
	}
	u.IsAdmin = admin
}

func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*u = User(p)
	u.Normalize()
	return nil
}

// Admin reports whether u has the admin role.
func (u User) Admin() bool { return u.Role == RoleAdmin }

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up request body.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both login and registration. Registration may
// omit the token when the account needs verification first.
type AuthResponse struct {
	Message         string `json:"message,omitempty"`
	Token           string `json:"token,omitempty"`
	User            *User  `json:"user,omitempty"`
	LinkedIncidents int    `json:"linked_incidents,omitempty"`
}

// ProfileUpdate carries the editable profile fields. Empty fields are left
// unchanged by the backend.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Message is the generic {"message": "..."} acknowledgement body.
type Message struct {
	Message string `json:"message"`
}
