package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/ireporter/internal/client/client"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
)

const MinPasswordLength = 6

// RegisterForm is what the sign-up view collects.
type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate applies the sign-up form rules.
func (f RegisterForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Email) == "" || f.Password == "" {
		return invalid("Name, email and password are required")
	}
	if f.Password != f.ConfirmPassword {
		return invalid("Passwords do not match")
	}
	if len(f.Password) < MinPasswordLength {
		return invalid("Password must be at least 6 characters long")
	}
	return nil
}

// UserService defines account operations for the CLI.
//
// Contract:
//   - Login/Register: talk to the backend without a token; the caller
//     persists the returned session.
//   - Me: fetch the current user; rejection is left to the caller.
//   - Admin operations require an admin token server-side.
type UserService interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, form RegisterForm) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) (*models.AuthResponse, error)
	ResendVerification(ctx context.Context, email string) (string, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ChangeRole(ctx context.Context, id models.ID, role string) (models.Role, error)
	DeleteUser(ctx context.Context, id models.ID) error
}

type userService struct {
	api   client.UserAPI
	guard *SessionGuard
}

// NewUserService constructs a UserService over api. guard may be nil.
func NewUserService(api client.UserAPI, guard *SessionGuard) UserService {
	return &userService{api: api, guard: guard}
}

func (s *userService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, invalid("Email and password are required")
	}
	return s.api.Login(ctx, models.Credentials{Email: email, Password: password})
}

func (s *userService) Register(ctx context.Context, form RegisterForm) (*models.AuthResponse, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return s.api.Register(ctx, models.Registration{
		Name:     strings.TrimSpace(form.Name),
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
	})
}

func (s *userService) Me(ctx context.Context) (*models.User, error) {
	return s.api.Me(ctx)
}

func (s *userService) UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, error) {
	p.Name, p.Email = strings.TrimSpace(p.Name), strings.TrimSpace(p.Email)
	if p.Name == "" && p.Email == "" {
		return nil, invalid("Nothing to update")
	}
	u, err := s.api.UpdateProfile(ctx, p)
	return u, s.guard.check(ctx, err)
}

func (s *userService) VerifyEmail(ctx context.Context, token string) (*models.AuthResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, invalid("No verification token provided")
	}
	return s.api.VerifyEmail(ctx, token)
}

func (s *userService) ResendVerification(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", invalid("Please enter your email address")
	}
	return s.api.ResendVerification(ctx, email)
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.api.ListUsers(ctx)
	return users, s.guard.check(ctx, err)
}

func (s *userService) ChangeRole(ctx context.Context, id models.ID, role string) (models.Role, error) {
	if id.IsZero() {
		return "", invalid("User id is required")
	}
	r, err := models.ParseRole(role)
	if err != nil {
		return "", invalid("Role must be user or admin")
	}
	if err := s.guard.check(ctx, s.api.UpdateRole(ctx, id, r)); err != nil {
		return "", err
	}
	return r, nil
}

func (s *userService) DeleteUser(ctx context.Context, id models.ID) error {
	if id.IsZero() {
		return invalid("User id is required")
	}
	return s.guard.check(ctx, s.api.DeleteUser(ctx, id))
}
