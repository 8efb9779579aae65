package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/ireporter/internal/client/models"
)

// UserAPI covers accounts, email verification and the admin user list.
type UserAPI interface {
	Register(ctx context.Context, r models.Registration) (*models.AuthResponse, error)
	Login(ctx context.Context, c models.Credentials) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) (*models.AuthResponse, error)
	ResendVerification(ctx context.Context, email string) (string, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id models.ID, role models.Role) error
	DeleteUser(ctx context.Context, id models.ID) error
}

type Users struct {
	c *HTTPClient
}

var _ UserAPI = (*Users)(nil)

// Register and Login are sent without a token even when one is stored.
func (u *Users) Register(ctx context.Context, r models.Registration) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := u.c.do(anonymous(ctx), http.MethodPost, "/users/register", r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (u *Users) Login(ctx context.Context, c models.Credentials) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := u.c.do(anonymous(ctx), http.MethodPost, "/users/login", c, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (u *Users) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := u.c.do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile accepts either a bare user or {"user": {...}} in reply.
func (u *Users) UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, error) {
	var raw json.RawMessage
	if err := u.c.do(ctx, http.MethodPut, "/users/profile", p, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil {
		return wrapped.User, nil
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &user, nil
}

func (u *Users) VerifyEmail(ctx context.Context, token string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := u.c.do(anonymous(ctx), http.MethodPost, "/users/verify-email", map[string]string{"token": token}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (u *Users) ResendVerification(ctx context.Context, email string) (string, error) {
	var resp models.Message
	err := u.c.do(anonymous(ctx), http.MethodPost, "/users/resend-verification", map[string]string{"email": email}, &resp)
	return resp.Message, err
}

func (u *Users) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := u.c.do(ctx, http.MethodGet, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (u *Users) UpdateRole(ctx context.Context, id models.ID, role models.Role) error {
	path := "/admin/users/" + url.PathEscape(id.String()) + "/role"
	return u.c.do(ctx, http.MethodPatch, path, map[string]models.Role{"role": role}, nil)
}

func (u *Users) DeleteUser(ctx context.Context, id models.ID) error {
	return u.c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id.String()), nil, nil)
}
