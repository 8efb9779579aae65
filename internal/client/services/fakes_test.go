package services

import (
	"context"

	"github.com/dmitrijs2005/ireporter/internal/client/client"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
)

// fakeUserAPI implements client.UserAPI for unit tests.
type fakeUserAPI struct {
	LoginRet    *models.AuthResponse
	LoginErr    error
	RegisterRet *models.AuthResponse
	RegisterErr error
	ListErr     error
	RoleErr     error
	DeleteErr   error

	Calls             int
	LastCredentials   models.Credentials
	LastRegistration  models.Registration
	LastRoleID        models.ID
	LastRole          models.Role
	LastVerifyToken   string
	LastResendEmail   string
	LastProfileUpdate models.ProfileUpdate
}

var _ client.UserAPI = (*fakeUserAPI)(nil)

func (f *fakeUserAPI) Register(_ context.Context, r models.Registration) (*models.AuthResponse, error) {
	f.Calls++
	f.LastRegistration = r
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeUserAPI) Login(_ context.Context, c models.Credentials) (*models.AuthResponse, error) {
	f.Calls++
	f.LastCredentials = c
	return f.LoginRet, f.LoginErr
}

func (f *fakeUserAPI) Me(context.Context) (*models.User, error) {
	f.Calls++
	return &models.User{ID: "me"}, nil
}

func (f *fakeUserAPI) UpdateProfile(_ context.Context, p models.ProfileUpdate) (*models.User, error) {
	f.Calls++
	f.LastProfileUpdate = p
	return &models.User{ID: "me", Name: p.Name}, nil
}

func (f *fakeUserAPI) VerifyEmail(_ context.Context, token string) (*models.AuthResponse, error) {
	f.Calls++
	f.LastVerifyToken = token
	return &models.AuthResponse{Message: "ok"}, nil
}

func (f *fakeUserAPI) ResendVerification(_ context.Context, email string) (string, error) {
	f.Calls++
	f.LastResendEmail = email
	return "sent", nil
}

func (f *fakeUserAPI) ListUsers(context.Context) ([]models.User, error) {
	f.Calls++
	return nil, f.ListErr
}

func (f *fakeUserAPI) UpdateRole(_ context.Context, id models.ID, role models.Role) error {
	f.Calls++
	f.LastRoleID, f.LastRole = id, role
	return f.RoleErr
}

func (f *fakeUserAPI) DeleteUser(context.Context, models.ID) error {
	f.Calls++
	return f.DeleteErr
}

// fakeIncidentAPI implements client.IncidentAPI for unit tests.
type fakeIncidentAPI struct {
	Err error

	Calls         int
	LastInput     models.IncidentInput
	LastID        models.ID
	LastStatus    models.Status
	LastAnonymous models.AnonymousReport
}

var _ client.IncidentAPI = (*fakeIncidentAPI)(nil)

func (f *fakeIncidentAPI) List(context.Context) ([]models.Incident, error) {
	f.Calls++
	return []models.Incident{{ID: "1"}}, f.Err
}

func (f *fakeIncidentAPI) Get(_ context.Context, id models.ID) (*models.Incident, error) {
	f.Calls++
	f.LastID = id
	return &models.Incident{ID: id}, f.Err
}

func (f *fakeIncidentAPI) Create(_ context.Context, in models.IncidentInput) (*models.Incident, error) {
	f.Calls++
	f.LastInput = in
	return &models.Incident{ID: "new", Title: in.Title}, f.Err
}

func (f *fakeIncidentAPI) Update(_ context.Context, id models.ID, in models.IncidentInput) (*models.Incident, error) {
	f.Calls++
	f.LastID, f.LastInput = id, in
	return &models.Incident{ID: id, Title: in.Title}, f.Err
}

func (f *fakeIncidentAPI) ChangeStatus(_ context.Context, id models.ID, st models.Status) (*models.Incident, error) {
	f.Calls++
	f.LastID, f.LastStatus = id, st
	return &models.Incident{ID: id, Status: st}, f.Err
}

func (f *fakeIncidentAPI) Delete(_ context.Context, id models.ID) error {
	f.Calls++
	f.LastID = id
	return f.Err
}

func (f *fakeIncidentAPI) ReportAnonymously(_ context.Context, r models.AnonymousReport) (*models.Incident, error) {
	f.Calls++
	f.LastAnonymous = r
	return &models.Incident{ID: "anon", IsAnonymous: true}, f.Err
}

func (f *fakeIncidentAPI) Stats(context.Context) (*models.Stats, error) {
	f.Calls++
	return &models.Stats{Total: 3}, f.Err
}

// fakeNotificationAPI implements client.NotificationAPI for unit tests.
type fakeNotificationAPI struct {
	Err          error
	Calls        int
	LastMarkedID models.ID
}

var _ client.NotificationAPI = (*fakeNotificationAPI)(nil)

func (f *fakeNotificationAPI) List(context.Context) (*models.NotificationList, error) {
	f.Calls++
	return &models.NotificationList{UnreadCount: 1}, f.Err
}

func (f *fakeNotificationAPI) MarkRead(_ context.Context, id models.ID) error {
	f.Calls++
	f.LastMarkedID = id
	return f.Err
}

func (f *fakeNotificationAPI) MarkAllRead(context.Context) error {
	f.Calls++
	return f.Err
}

func staticTokens(tok string) client.TokenSource {
	return client.TokenSourceFunc(func(context.Context) (string, error) { return tok, nil })
}

// logoutRecorder counts forced logouts.
type logoutRecorder struct{ n int }

func (r *logoutRecorder) handle(context.Context) { r.n++ }

func guardWith(tok string) (*SessionGuard, *logoutRecorder) {
	g := NewSessionGuard(staticTokens(tok))
	rec := &logoutRecorder{}
	g.OnUnauthorized(rec.handle)
	return g, rec
}

func unauthorized() error {
	return &client.APIError{Status: 401, Message: "Token has expired"}
}
