package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/ireporter/internal/apitest"
	"github.com/dmitrijs2005/ireporter/internal/client/config"
	"github.com/dmitrijs2005/ireporter/internal/client/guard"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/dmitrijs2005/ireporter/internal/client/notice"
	"github.com/dmitrijs2005/ireporter/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

type testApp struct {
	*App
	srv *apitest.Server
	out *syncBuffer
}

// newTestApp builds a fully wired App against the in-memory backend. input
// holds the answers the prompts will read, one per line.
func newTestApp(t *testing.T, input ...string) *testApp {
	t.Helper()
	srv := apitest.New(t)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.APIBaseURL = srv.BaseURL()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "cli.db")
	cfg.NotificationPollInterval = time.Hour
	cfg.OnlineCheckInterval = time.Hour

	out := &syncBuffer{}
	app, err := NewApp(context.Background(), cfg, logging.Nop(),
		WithInput(strings.NewReader(strings.Join(input, "\n")+"\n")),
		WithOutput(out),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	app.session.Initialize(context.Background())
	return &testApp{App: app, srv: srv, out: out}
}

// stubPasswords makes getPassword return pws in order.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	var i int
	getPassword = func(string, io.Writer) (string, error) {
		if i >= len(pws) {
			return "", io.EOF
		}
		i++
		return pws[i-1], nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func (a *testApp) texts() []string {
	var out []string
	for _, n := range a.notices.Shown() {
		out = append(out, n.Text)
	}
	return out
}

func (a *testApp) loginAs(t *testing.T, email, password string) {
	t.Helper()
	res := a.session.Login(context.Background(), email, password)
	require.True(t, res.Success, res.Error)
}

func TestApp_Login(t *testing.T) {
	app := newTestApp(t, "ada@example.com")
	app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	stubPasswords(t, "secret1")

	require.NoError(t, app.Login(context.Background()))

	assert.True(t, app.isLoggedIn())
	assert.Equal(t, guard.PathDashboard, app.currentPath())
	assert.Contains(t, app.texts(), "Login successful!")
	assert.Contains(t, app.out.String(), "Welcome, Ada (Citizen)")

	require.Eventually(t, func() bool {
		return app.srv.CountRequests("GET", "/notifications") > 0
	}, 2*time.Second, 10*time.Millisecond, "poller should start after login")
}

func TestApp_LoginFailure(t *testing.T) {
	app := newTestApp(t, "ada@example.com")
	app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	stubPasswords(t, "wrong-password")

	err := app.Login(context.Background())
	require.Error(t, err)

	assert.False(t, app.isLoggedIn())
	assert.Equal(t, guard.PathLogin, app.currentPath())
	assert.Contains(t, app.texts(), "Invalid credentials")
}

func TestApp_LoginWhenAlreadyLoggedInGoesToDashboard(t *testing.T) {
	app := newTestApp(t)
	app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	app.loginAs(t, "ada@example.com", "secret1")

	require.NoError(t, app.Login(context.Background()))
	assert.Equal(t, guard.PathDashboard, app.currentPath())
}

func TestApp_GuardSendsAnonymousToLogin(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	for _, p := range []string{"/admin", "/incidents", "/incidents/abc", "/nowhere", "/"} {
		app.navigate(ctx, p)
		assert.Equal(t, guard.PathLogin, app.currentPath(), p)
	}

	require.NoError(t, app.Create(ctx))
	assert.Equal(t, guard.PathLogin, app.currentPath())
	assert.Zero(t, app.srv.CountRequests("POST", "/incidents"))
}

func TestApp_Register(t *testing.T) {
	app := newTestApp(t, "Grace Hopper", "grace@example.com")
	stubPasswords(t, "secret1", "secret1")

	require.NoError(t, app.Register(context.Background()))

	assert.True(t, app.isLoggedIn())
	assert.Contains(t, app.texts(), "Registration successful! Welcome to iReporter!")
	assert.Equal(t, guard.PathDashboard, app.currentPath())
}

func TestApp_RegisterPasswordMismatch(t *testing.T) {
	app := newTestApp(t, "Grace Hopper", "grace@example.com")
	stubPasswords(t, "secret1", "secret2")

	require.Error(t, app.Register(context.Background()))
	assert.Contains(t, app.texts(), "Passwords do not match")
	assert.Zero(t, app.srv.CountRequests("POST", "/users/register"))
}

func TestApp_Verify(t *testing.T) {
	app := newTestApp(t)
	u := app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	tok := app.srv.IssueVerification(u.ID)

	require.NoError(t, app.Verify(context.Background(), []string{tok}))
	assert.True(t, app.isLoggedIn())
	assert.Contains(t, app.texts(), "Email verified successfully! Welcome to iReporter!")

	require.NoError(t, app.Logout(context.Background()))
	require.Error(t, app.Verify(context.Background(), []string{"bogus"}))
	assert.Contains(t, app.texts(), "Invalid or expired verification token")
}

func TestApp_Resend(t *testing.T) {
	app := newTestApp(t, "")
	ctx := context.Background()

	require.Error(t, app.Resend(ctx, nil))
	assert.Contains(t, app.texts(), "Please enter your email address")

	require.NoError(t, app.Resend(ctx, []string{"ada@example.com"}))
	assert.Contains(t, app.texts(), "Verification email sent! Please check your inbox.")
}

func TestApp_CreateIncident(t *testing.T) {
	app := newTestApp(t,
		"Broken bridge",
		"The bridge on Main St collapsed",
		"",
		"intervention",
		"1",
		"Main St",
	)
	app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	app.loginAs(t, "ada@example.com", "secret1")

	require.NoError(t, app.Create(context.Background()))

	assert.Contains(t, app.texts(), "Incident reported successfully!")
	assert.Equal(t, guard.PathIncidents, app.currentPath())

	list, err := app.incidents.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Broken bridge", list[0].Title)
	assert.Equal(t, models.TypeIntervention, list[0].Type)
	assert.Equal(t, models.Categories(models.TypeIntervention)[0], list[0].Category)
}

func TestApp_CreateIncidentValidation(t *testing.T) {
	app := newTestApp(t, "", "", "", "", "", "")
	app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	app.loginAs(t, "ada@example.com", "secret1")

	require.Error(t, app.createForm(context.Background()))
	assert.Contains(t, app.texts(), "Title, description, type, and location are required")
	assert.Zero(t, app.srv.CountRequests("POST", "/incidents"))
}

func TestApp_EditOwnIncidentOnly(t *testing.T) {
	app := newTestApp(t)
	app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	bob := app.srv.AddUser("Bob", "bob@example.com", "secret1", false)
	inc := app.srv.AddIncident(models.Incident{
		Title: "Bob's", Description: "d", Type: models.TypeRedFlag, Location: "x", UserID: bob.ID,
	})
	app.loginAs(t, "ada@example.com", "secret1")

	require.NoError(t, app.Edit(context.Background(), []string{inc.ID.String()}))

	assert.Equal(t, guard.PathIncidents, app.currentPath())
	assert.Contains(t, app.texts(), "You can only edit your own incidents")
	assert.Zero(t, app.srv.CountRequests("PUT", "/incidents/"+inc.ID.String()))
}

func TestApp_EditKeepsDefaults(t *testing.T) {
	// title changes; everything else is accepted as shown
	app := newTestApp(t, "Pothole (updated)", "", "", "", "")
	ada := app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	inc := app.srv.AddIncident(models.Incident{
		Title: "Pothole", Description: "Deep one", Type: models.TypeIntervention,
		Category: models.Categories(models.TypeIntervention)[0], Location: "5th Ave", UserID: ada.ID,
	})
	app.loginAs(t, "ada@example.com", "secret1")

	require.NoError(t, app.Edit(context.Background(), []string{inc.ID.String()}))

	got, ok := app.srv.Incident(inc.ID)
	require.True(t, ok)
	assert.Equal(t, "Pothole (updated)", got.Title)
	assert.Equal(t, "Deep one", got.Description)
	assert.Equal(t, inc.Category, got.Category)
	assert.Equal(t, guard.IncidentPath(inc.ID.String()), app.currentPath())
	assert.Contains(t, app.texts(), "Incident updated successfully!")
}

func TestApp_DeleteIncident(t *testing.T) {
	app := newTestApp(t, "y")
	ada := app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	inc := app.srv.AddIncident(models.Incident{
		Title: "Mine", Description: "d", Type: models.TypeRedFlag, Location: "x", UserID: ada.ID,
	})
	app.loginAs(t, "ada@example.com", "secret1")

	require.NoError(t, app.Delete(context.Background(), []string{inc.ID.String()}))

	_, ok := app.srv.Incident(inc.ID)
	assert.False(t, ok)
	assert.Contains(t, app.texts(), "Incident deleted successfully")
}

func TestApp_DeleteDeclined(t *testing.T) {
	app := newTestApp(t, "n")
	ada := app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	inc := app.srv.AddIncident(models.Incident{
		Title: "Mine", Description: "d", Type: models.TypeRedFlag, Location: "x", UserID: ada.ID,
	})
	app.loginAs(t, "ada@example.com", "secret1")

	require.NoError(t, app.Delete(context.Background(), []string{inc.ID.String()}))
	_, ok := app.srv.Incident(inc.ID)
	assert.True(t, ok)
}

func TestApp_DownloadAttachment(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("evidence"))
	}))
	defer media.Close()

	app := newTestApp(t)
	app.downloads = t.TempDir()
	ada := app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	with := app.srv.AddIncident(models.Incident{
		Title: "Mine", Description: "d", Type: models.TypeRedFlag, Location: "x", UserID: ada.ID,
		MediaURL: media.URL + "/evidence/photo.jpg",
	})
	without := app.srv.AddIncident(models.Incident{
		Title: "Bare", Description: "d", Type: models.TypeRedFlag, Location: "x", UserID: ada.ID,
	})
	app.loginAs(t, "ada@example.com", "secret1")

	require.NoError(t, app.Download(context.Background(), []string{with.ID.String()}))
	b, err := os.ReadFile(filepath.Join(app.downloads, "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "evidence", string(b))

	err = app.Download(context.Background(), []string{without.ID.String()})
	require.Error(t, err)
	assert.Contains(t, app.texts(), "This incident has no attachment")
}

func TestApp_AnonymousReport(t *testing.T) {
	app := newTestApp(t,
		"Bribe at the permit office",
		"An officer asked for cash",
		"",
		"",
		"City Hall",
		"Jo",
		"jo@example.com",
	)

	require.NoError(t, app.Report(context.Background()))

	assert.Contains(t, app.texts(), "Incident reported successfully! Thank you for your report.")
	assert.Equal(t, 1, app.notices.Pending(), "follow-up notice is scheduled")

	var found bool
	for _, r := range app.srv.Requests() {
		if r.Method == "POST" && r.Path == "/api/incidents/anonymous" {
			found = true
			assert.Empty(t, r.Authorization)
		}
	}
	assert.True(t, found)
}

func TestApp_AnonymousReportFailure(t *testing.T) {
	app := newTestApp(t, "t", "d", "", "redflag", "loc", "", "")
	app.srv.FailNext("POST", "/incidents/anonymous", 500, "Database unavailable")

	require.Error(t, app.Report(context.Background()))
	assert.Contains(t, app.texts(), "Database unavailable")
	assert.Zero(t, app.notices.Pending())
}

func TestApp_ForcedLogoutOnRejectedToken(t *testing.T) {
	app := newTestApp(t)
	app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	app.loginAs(t, "ada@example.com", "secret1")
	app.syncPoller()

	app.srv.FailNext("GET", "/incidents", 401, "Token has expired")
	require.NoError(t, app.List(context.Background(), nil))

	assert.False(t, app.isLoggedIn())
	assert.False(t, app.tokenPresent(context.Background()))
	assert.Equal(t, guard.PathLogin, app.currentPath())
	assert.Contains(t, app.texts(), "Your session has expired. Please log in again.")

	app.prompt()
	before := app.srv.CountRequests("GET", "/notifications")
	require.NoError(t, app.poller.Refresh(context.Background()))
	assert.Equal(t, before, app.srv.CountRequests("GET", "/notifications"))
}

func TestApp_ListFilter(t *testing.T) {
	app := newTestApp(t)
	ada := app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	app.srv.AddIncident(models.Incident{Title: "Flag one", Description: "d", Type: models.TypeRedFlag, Location: "x", UserID: ada.ID})
	app.srv.AddIncident(models.Incident{Title: "Fix road", Description: "d", Type: models.TypeIntervention, Location: "x", UserID: ada.ID})
	app.loginAs(t, "ada@example.com", "secret1")

	require.NoError(t, app.List(context.Background(), []string{"Intervention"}))
	out := app.out.String()
	assert.Contains(t, out, "Fix road")
	assert.NotContains(t, out, "Flag one")

	require.Error(t, app.List(context.Background(), []string{"urgent"}))
}

func TestApp_AdminPanel(t *testing.T) {
	t.Run("citizen is bounced to the dashboard", func(t *testing.T) {
		app := newTestApp(t)
		app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
		app.loginAs(t, "ada@example.com", "secret1")

		require.NoError(t, app.Admin(context.Background(), nil))
		assert.Equal(t, guard.PathDashboard, app.currentPath())
		assert.Contains(t, app.texts(), "Admin access required")
		assert.Zero(t, app.srv.CountRequests("GET", "/admin/users"))
	})

	t.Run("admin sees the users tab", func(t *testing.T) {
		app := newTestApp(t)
		app.srv.AddUser("Root", "root@example.com", "secret1", true)
		app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
		app.loginAs(t, "root@example.com", "secret1")

		require.NoError(t, app.Admin(context.Background(), []string{"users"}))
		assert.Equal(t, guard.PathAdmin, app.currentPath())
		out := app.out.String()
		assert.Contains(t, out, "ada@example.com")
		assert.Contains(t, out, "(you)")
	})
}

func TestApp_AdminActions(t *testing.T) {
	app := newTestApp(t, "y")
	app.srv.AddUser("Root", "root@example.com", "secret1", true)
	ada := app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	inc := app.srv.AddIncident(models.Incident{Title: "t", Description: "d", Type: models.TypeRedFlag, Location: "x", UserID: ada.ID})
	app.loginAs(t, "root@example.com", "secret1")
	ctx := context.Background()

	require.NoError(t, app.Status(ctx, []string{inc.ID.String(), "resolved"}))
	got, _ := app.srv.Incident(inc.ID)
	assert.Equal(t, models.StatusResolved, got.Status)
	assert.Contains(t, app.texts(), "Status updated successfully")

	require.Error(t, app.Status(ctx, []string{inc.ID.String(), "closed"}))

	require.NoError(t, app.Role(ctx, []string{ada.ID.String(), "admin"}))
	assert.Contains(t, app.texts(), "User role updated to admin")
	assert.Equal(t, guard.PathAdmin, app.currentPath())

	require.NoError(t, app.DeleteUser(ctx, []string{ada.ID.String()}))
	assert.Contains(t, app.texts(), "User deleted successfully")
}

func TestApp_AdminActionsRequireAdmin(t *testing.T) {
	app := newTestApp(t)
	ada := app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	inc := app.srv.AddIncident(models.Incident{Title: "t", Description: "d", Type: models.TypeRedFlag, Location: "x", UserID: ada.ID})
	app.loginAs(t, "ada@example.com", "secret1")
	ctx := context.Background()

	require.Error(t, app.Status(ctx, []string{inc.ID.String(), "resolved"}))
	require.Error(t, app.Role(ctx, []string{ada.ID.String(), "admin"}))
	require.Error(t, app.DeleteUser(ctx, []string{ada.ID.String()}))
	assert.Zero(t, app.srv.CountRequests("PUT", "/incidents/"+inc.ID.String()))
}

func TestApp_Notifications(t *testing.T) {
	app := newTestApp(t)
	ada := app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	inc := app.srv.AddIncident(models.Incident{Title: "t", Description: "d", Type: models.TypeRedFlag, Location: "x", UserID: ada.ID})
	app.srv.AddNotification(ada.ID, inc.ID, "Your incident is now under investigation")
	app.loginAs(t, "ada@example.com", "secret1")
	ctx := context.Background()

	require.NoError(t, app.Notifications(ctx))
	assert.Contains(t, app.out.String(), "Your incident is now under investigation")
	assert.Equal(t, 1, app.poller.Snapshot().Unread)

	require.NoError(t, app.Open(ctx, []string{"1"}))
	assert.Equal(t, guard.IncidentPath(inc.ID.String()), app.currentPath())
	assert.Zero(t, app.poller.Snapshot().Unread)

	require.Error(t, app.Open(ctx, []string{"7"}))
	require.NoError(t, app.Read(ctx, []string{"all"}))
}

func TestApp_Profile(t *testing.T) {
	app := newTestApp(t, "Ada Lovelace", "")
	app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	app.loginAs(t, "ada@example.com", "secret1")

	require.NoError(t, app.Profile(context.Background()))
	assert.Equal(t, "Ada Lovelace", app.session.User().Name)
	assert.Contains(t, app.texts(), "Profile updated successfully")
}

func TestApp_WidthSwitchesLayout(t *testing.T) {
	app := newTestApp(t)
	app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	app.loginAs(t, "ada@example.com", "secret1")
	ctx := context.Background()

	require.NoError(t, app.Width(ctx, []string{"500"}))
	assert.Contains(t, app.out.String(), "Report New Incident")

	require.Error(t, app.Width(ctx, []string{"wide"}))
	assert.Equal(t, 500, app.viewWidth())
}

func TestApp_Logout(t *testing.T) {
	app := newTestApp(t)
	app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	app.loginAs(t, "ada@example.com", "secret1")

	require.NoError(t, app.Logout(context.Background()))
	assert.False(t, app.isLoggedIn())
	assert.Equal(t, guard.PathLogin, app.currentPath())
	assert.Contains(t, app.texts(), "Logged out")
}

func TestApp_Run(t *testing.T) {
	app := newTestApp(t, "help", "go /dashboard", "exit")

	app.Run(context.Background())

	out := app.out.String()
	assert.Contains(t, out, "Welcome to iReporter CLI")
	assert.Contains(t, out, "register")
	assert.Contains(t, out, "Bye!")
	assert.Equal(t, guard.PathLogin, app.currentPath())
}

func TestSetMode_ChangesAndNotifiesOnce(t *testing.T) {
	app := newTestApp(t)
	app.srv.AddUser("Ada", "ada@example.com", "secret1", false)
	app.loginAs(t, "ada@example.com", "secret1")
	app.setPath(guard.PathDashboard)

	app.setMode(ModeOnline)
	assert.Equal(t, ModeOnline, app.Mode)
	assert.Empty(t, app.notices.Shown(), "no notice when the mode does not change")
	assert.NotContains(t, app.out.String(), "📡")

	app.setMode(ModeOffline)
	assert.Equal(t, ModeOffline, app.Mode)
	shown := app.notices.Shown()
	require.Len(t, shown, 1)
	assert.Equal(t, notice.KindWarning, shown[0].Kind)
	assert.Contains(t, app.out.String(), "📡 You're offline", "banner is redrawn without waiting for navigation")

	app.setMode(ModeOnline)
	require.Len(t, app.notices.Shown(), 2)
	assert.Equal(t, "Back online", app.notices.Shown()[1].Text)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestStartOnlineStatusWatcher(t *testing.T) {
	var down atomic.Bool
	down.Store(true)

	app := newTestApp(t)
	app.api = pingFunc(func(context.Context) error {
		if down.Load() {
			return errors.New("connection refused")
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		app.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
	}()

	require.Eventually(t, func() bool { return !app.online() }, time.Second, 5*time.Millisecond)
	down.Store(false)
	require.Eventually(t, app.online, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
