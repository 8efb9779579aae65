package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/ireporter/internal/apitest"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_RegisterLoginMe(t *testing.T) {
	srv := apitest.New(t)
	tokens := &memTokens{}
	users := newTestClient(t, srv.BaseURL(), tokens).Users()
	ctx := context.Background()

	reg, err := users.Register(ctx, models.Registration{Name: "First", Email: "first@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, reg.User)
	assert.NotEmpty(t, reg.Token)
	assert.True(t, reg.User.Admin(), "first account becomes admin")

	_, err = users.Register(ctx, models.Registration{Name: "Dup", Email: "first@example.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrBadRequest)
	assert.Equal(t, "User already exists", MessageFor(err, ""))

	_, err = users.Login(ctx, models.Credentials{Email: "first@example.com", Password: "nope"})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", MessageFor(err, ""))

	login, err := users.Login(ctx, models.Credentials{Email: "first@example.com", Password: "secret1"})
	require.NoError(t, err)

	tokens.set(login.Token)
	me, err := users.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, me.ID)
	assert.True(t, me.Admin())
}

func TestUsers_RegisterLinksAnonymousIncidents(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("Admin", "admin@example.com", "secret1", true)
	srv.AddIncident(models.Incident{Title: "a", ReporterEmail: "kofi@example.com"})
	srv.AddIncident(models.Incident{Title: "b", ReporterEmail: "KOFI@example.com"})
	srv.AddIncident(models.Incident{Title: "c", ReporterEmail: "other@example.com"})

	users := newTestClient(t, srv.BaseURL(), nil).Users()
	resp, err := users.Register(context.Background(), models.Registration{Name: "Kofi", Email: "kofi@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.LinkedIncidents)
	assert.False(t, resp.User.Admin())
}

func TestUsers_AdminOperations(t *testing.T) {
	srv := apitest.New(t)
	admin := srv.AddUser("Admin", "admin@example.com", "secret1", true)
	plain := srv.AddUser("Ama", "ama@example.com", "secret1", false)

	tokens := &memTokens{token: srv.Token(admin.ID)}
	users := newTestClient(t, srv.BaseURL(), tokens).Users()
	ctx := context.Background()

	list, err := users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, users.UpdateRole(ctx, plain.ID, models.RoleAdmin))
	list, err = users.ListUsers(ctx)
	require.NoError(t, err)
	assert.True(t, list[1].Admin())

	require.NoError(t, users.DeleteUser(ctx, plain.ID))
	require.ErrorIs(t, users.DeleteUser(ctx, plain.ID), ErrNotFound)

	tokens.set(srv.Token(srv.AddUser("Kwame", "k@example.com", "secret1", false).ID))
	_, err = users.ListUsers(ctx)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Admin access required", MessageFor(err, ""))
}

func TestUsers_ProfileAndVerification(t *testing.T) {
	srv := apitest.New(t)
	u := srv.AddUser("Ama", "ama@example.com", "secret1", false)
	users := newTestClient(t, srv.BaseURL(), &memTokens{token: srv.Token(u.ID)}).Users()
	ctx := context.Background()

	updated, err := users.UpdateProfile(ctx, models.ProfileUpdate{Name: "Ama Mensah"})
	require.NoError(t, err)
	assert.Equal(t, "Ama Mensah", updated.Name)
	assert.Equal(t, u.ID, updated.ID)

	tok := srv.IssueVerification(u.ID)
	verified, err := users.VerifyEmail(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "Email verified successfully", verified.Message)
	assert.NotEmpty(t, verified.Token)
	assert.True(t, verified.User.EmailVerified)

	_, err = users.VerifyEmail(ctx, tok)
	require.ErrorIs(t, err, ErrBadRequest)

	msg, err := users.ResendVerification(ctx, "ama@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
}

func TestIncidents_CRUDAndStatus(t *testing.T) {
	srv := apitest.New(t)
	admin := srv.AddUser("Admin", "admin@example.com", "secret1", true)
	owner := srv.AddUser("Ama", "ama@example.com", "secret1", false)

	tokens := &memTokens{token: srv.Token(owner.ID)}
	incidents := newTestClient(t, srv.BaseURL(), tokens).Incidents()
	ctx := context.Background()

	created, err := incidents.Create(ctx, models.IncidentInput{
		Title: "Bribe at checkpoint", Description: "Officer asked for cash",
		Type: models.TypeRedFlag, Category: "bribery", Location: "Accra",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, owner.ID, created.UserID)

	_, err = incidents.Create(ctx, models.IncidentInput{Title: "x"})
	require.ErrorIs(t, err, ErrBadRequest)

	got, err := incidents.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ama", got.UserName)

	_, err = incidents.Get(ctx, "ffffffffffffffffffffffff")
	require.ErrorIs(t, err, ErrNotFound)

	edited, err := incidents.Update(ctx, created.ID, models.IncidentInput{
		Title: "Bribe at checkpoint 4", Description: got.Description, Type: got.Type, Location: got.Location,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bribe at checkpoint 4", edited.Title)

	tokens.set(srv.Token(admin.ID))
	moved, err := incidents.ChangeStatus(ctx, created.ID, models.StatusInvestigating)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvestigating, moved.Status)

	stats, err := incidents.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Stats{Total: 1, Investigating: 1, RedFlags: 1}, *stats)

	require.NoError(t, incidents.Delete(ctx, created.ID))
	list, err := incidents.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIncidents_NonOwnerForbidden(t *testing.T) {
	srv := apitest.New(t)
	owner := srv.AddUser("Ama", "ama@example.com", "secret1", false)
	other := srv.AddUser("Kofi", "kofi@example.com", "secret1", false)
	inc := srv.AddIncident(models.Incident{Title: "t", Description: "d", Type: models.TypeIntervention, Location: "l", UserID: owner.ID})

	incidents := newTestClient(t, srv.BaseURL(), &memTokens{token: srv.Token(other.ID)}).Incidents()
	require.ErrorIs(t, incidents.Delete(context.Background(), inc.ID), ErrForbidden)
}

func TestIncidents_LegacyIntegerIDs(t *testing.T) {
	srv := apitest.New(t)
	u := srv.AddUser("Ama", "ama@example.com", "secret1", false)
	srv.AddIncident(models.Incident{ID: "17", Title: "legacy", Type: models.TypeRedFlag, UserID: u.ID})

	incidents := newTestClient(t, srv.BaseURL(), &memTokens{token: srv.Token(u.ID)}).Incidents()
	got, err := incidents.Get(context.Background(), "17")
	require.NoError(t, err)
	assert.Equal(t, models.ID("17"), got.ID)
}

func TestNotifications_ListAndMark(t *testing.T) {
	srv := apitest.New(t)
	u := srv.AddUser("Ama", "ama@example.com", "secret1", false)
	first := srv.AddNotification(u.ID, "i1", "one")
	srv.AddNotification(u.ID, "i2", "two")

	notifications := newTestClient(t, srv.BaseURL(), &memTokens{token: srv.Token(u.ID)}).Notifications()
	ctx := context.Background()

	list, err := notifications.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, list.UnreadCount)
	assert.Equal(t, "two", list.Notifications[0].Message, "newest first")

	require.NoError(t, notifications.MarkRead(ctx, first.ID))
	list, err = notifications.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, list.UnreadCount)

	require.NoError(t, notifications.MarkAllRead(ctx))
	list, err = notifications.List(ctx)
	require.NoError(t, err)
	assert.Zero(t, list.UnreadCount)

	require.ErrorIs(t, notifications.MarkRead(ctx, "nope"), ErrNotFound)
	assert.Equal(t, 3, srv.CountRequests(http.MethodGet, "/notifications"))
}

func TestIncidents_ListToleratesOddTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"a1","created_at":"2024-05-01T10:00:00"},{"id":"a2","created_at":"2024-05-01"},{"id":"a3","created_at":"n/a"}]`))
	}))
	defer srv.Close()

	list, err := newTestClient(t, srv.URL, &memTokens{token: "t"}).Incidents().List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.False(t, list[1].CreatedAt.IsZero())
	assert.True(t, list[2].CreatedAt.IsZero())
}
