package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/ireporter/internal/client/client"
	"github.com/dmitrijs2005/ireporter/internal/client/config"
	"github.com/dmitrijs2005/ireporter/internal/client/media"
	"github.com/dmitrijs2005/ireporter/internal/client/notice"
	"github.com/dmitrijs2005/ireporter/internal/client/poller"
	sessionrepo "github.com/dmitrijs2005/ireporter/internal/client/repositories/session"
	"github.com/dmitrijs2005/ireporter/internal/client/services"
	"github.com/dmitrijs2005/ireporter/internal/client/session"
	"github.com/dmitrijs2005/ireporter/internal/client/views"
	"github.com/dmitrijs2005/ireporter/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const (
	pingTimeout         = 3 * time.Second
	anonymousFollowUp   = 2 * time.Second
	anonymousFollowText = "To track your incident progress, please register/login with the email you provided."
	downloadDir         = "downloads"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type uploader interface {
	UploadFile(ctx context.Context, path string) (string, error)
}

type App struct {
	config *config.Config
	log    logging.Logger
	out    io.Writer
	reader *bufio.Reader

	db        *sql.DB
	api       pinger
	users     services.UserService
	incidents services.IncidentService
	session   *session.Store
	poller    *poller.Poller
	notices   *notice.Notifier
	uploader  uploader
	download  *http.Client
	downloads string

	mu         sync.Mutex
	Mode       Mode
	path       string
	filter     views.Filter
	adminTab   string
	helpTopic  string
	width      int
	lastUnread int
	runCtx     context.Context

	now func() time.Time
	bg  sync.WaitGroup
}

type AppOption func(*App)

// WithInput replaces stdin as the source of commands and answers.
func WithInput(r io.Reader) AppOption {
	return func(a *App) { a.reader = bufio.NewReader(r) }
}

// WithOutput replaces stdout for views and notices.
func WithOutput(w io.Writer) AppOption {
	return func(a *App) { a.out = w }
}

// NewApp opens the session database and builds the services the REPL drives.
// Call Close when done.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger, opts ...AppOption) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	repo := sessionrepo.NewSQLiteRepository(db)

	api, err := client.NewHTTPClient(c.APIBaseURL, repo,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sg := services.NewSessionGuard(repo)
	a := &App{
		config:    c,
		log:       log,
		out:       os.Stdout,
		reader:    bufio.NewReader(os.Stdin),
		db:        db,
		api:       api,
		users:     services.NewUserService(api.Users(), sg),
		incidents: services.NewIncidentService(api.Incidents(), sg),
		Mode:      ModeOnline,
		filter:    views.FilterAll,
		width:     c.ViewportWidth,
		download:  &http.Client{Timeout: c.RequestTimeout},
		downloads: downloadDir,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.notices = notice.New(a.out)
	a.session = session.New(repo, a.users,
		session.WithNotifier(a.notices),
		session.WithNavigator(a.setPath),
		session.WithLogger(log),
	)
	sg.OnUnauthorized(a.session.ForceLogout)

	a.poller = poller.New(services.NewNotificationService(api.Notifications(), sg), repo,
		c.NotificationPollInterval, poller.WithLogger(log))
	a.poller.Subscribe(a.onNotifications)

	if c.Media.Enabled() {
		up, err := media.New(ctx, c.Media)
		if err != nil {
			log.Warn(ctx, "attachments disabled", "error", err)
		} else {
			a.uploader = up
		}
	}

	return a, nil
}

// Run restores the session, starts the connectivity watcher and blocks in
// the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.mu.Lock()
	a.runCtx = ctx
	a.mu.Unlock()

	fmt.Fprintln(a.out, "Welcome to iReporter CLI (type 'help' for commands)")
	a.session.Initialize(ctx)

	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	a.navigate(ctx, "/")
	runREPL(ctx, a, a.prompt, a.reader, a.out)

	cancel()
	a.bg.Wait()
}

// Close stops background work and releases the database.
func (a *App) Close() error {
	a.poller.Stop()
	a.notices.Close()
	a.bg.Wait()
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()
	if !changed {
		return
	}

	a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	if mode == ModeOffline {
		a.notices.Warn("You're offline. Some features may not work.")
	} else {
		a.notices.Info("Back online")
	}
	a.printHeader(a.currentPath())
}

func (a *App) online() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode == ModeOnline
}

// StartOnlineStatusWatcher probes the backend every interval and flips Mode
// when reachability changes. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := a.api.Ping(pctx)
			cancel()

			if ctx.Err() != nil {
				return
			}
			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// syncPoller keeps the poller running exactly while a user is logged in.
// It runs on the REPL goroutine so that a logout forced from inside a poll
// never waits on itself.
func (a *App) syncPoller() {
	if a.session.IsAuthenticated() {
		a.poller.Start(a.context())
		return
	}
	a.poller.Stop()
	a.mu.Lock()
	a.lastUnread = 0
	a.mu.Unlock()
}

func (a *App) onNotifications(st poller.State) {
	a.mu.Lock()
	grew := st.Unread > a.lastUnread
	a.lastUnread = st.Unread
	a.mu.Unlock()
	if grew {
		a.notices.Info(fmt.Sprintf("🔔 You have %d unread notification(s). Type 'notifications' to view.", st.Unread))
	}
}

func (a *App) context() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runCtx == nil {
		return context.Background()
	}
	return a.runCtx
}

func (a *App) setPath(path string) {
	a.mu.Lock()
	a.path = path
	a.mu.Unlock()
}

func (a *App) currentPath() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.path
}

// prompt refreshes background state and returns the REPL status line.
func (a *App) prompt() string {
	a.syncPoller()
	return a.getStatus()
}

func (a *App) getStatus() string {
	s := ""
	if u := a.session.User(); u != nil {
		s = u.Name + " "
		if u.Admin() {
			s = u.Name + " (admin) "
		}
	}
	a.mu.Lock()
	mode, path := a.Mode, a.path
	a.mu.Unlock()
	return fmt.Sprintf("(%s%s) %s", s, mode, path)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
