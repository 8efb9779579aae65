// Package poller keeps the notification list of the logged-in user fresh by
// fetching it on a fixed interval.
package poller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/ireporter/internal/client/client"
	"github.com/dmitrijs2005/ireporter/internal/client/guard"
	"github.com/dmitrijs2005/ireporter/internal/client/models"
	"github.com/dmitrijs2005/ireporter/internal/client/services"
	"github.com/dmitrijs2005/ireporter/internal/logging"
	"github.com/dustin/go-humanize"
)

const DefaultInterval = 30 * time.Second

// State is the last successfully fetched notification list.
type State struct {
	Notifications []models.Notification
	Unread        int
}

type Option func(*Poller)

func WithLogger(l logging.Logger) Option { return func(p *Poller) { p.log = l } }

func WithClock(now func() time.Time) Option { return func(p *Poller) { p.now = now } }

type Poller struct {
	svc      services.NotificationService
	tokens   client.TokenSource
	interval time.Duration
	log      logging.Logger
	now      func() time.Time

	mu        sync.Mutex
	state     State
	open      bool
	stopped   bool
	observers []func(State)

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a poller. A non-positive interval means DefaultInterval.
func New(svc services.NotificationService, tokens client.TokenSource, interval time.Duration, opts ...Option) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Poller{
		svc:      svc,
		tokens:   tokens,
		interval: interval,
		log:      logging.Nop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run fetches immediately and then once per interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	_ = p.Refresh(ctx)
	for {
		select {
		case <-ticker.C:
			_ = p.Refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Start runs the poller in a goroutine. A running poller is left alone.
func (p *Poller) Start(ctx context.Context) {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.cancel != nil {
		return
	}

	p.mu.Lock()
	p.stopped = false
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	go func() {
		defer close(done)
		p.Run(ctx)
	}()
}

// Stop cancels the polling goroutine and waits for it to exit. After Stop
// the state is no longer updated.
func (p *Poller) Stop() {
	p.runMu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.runMu.Unlock()

	p.mu.Lock()
	p.stopped = true
	p.open = false
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Refresh performs one fetch. Without a persisted token it does nothing.
func (p *Poller) Refresh(ctx context.Context) error {
	tok, err := p.tokens.Token(ctx)
	if err != nil || tok == "" {
		return err
	}

	list, err := p.svc.List(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn(ctx, "failed to fetch notifications", "error", err)
		}
		return err
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.state = State{
		Notifications: append([]models.Notification(nil), list.Notifications...),
		Unread:        list.UnreadCount,
	}
	snap := p.snapshotLocked()
	obs := append(([]func(State))(nil), p.observers...)
	p.mu.Unlock()

	for _, fn := range obs {
		fn(snap)
	}
	return nil
}

func (p *Poller) MarkRead(ctx context.Context, id models.ID) error {
	if err := p.svc.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return p.Refresh(ctx)
}

func (p *Poller) MarkAllRead(ctx context.Context) error {
	if err := p.svc.MarkAllRead(ctx); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return p.Refresh(ctx)
}

// Open marks n read and, when it refers to an incident, closes the dropdown
// and returns the incident's detail path. Otherwise the path is empty.
func (p *Poller) Open(ctx context.Context, n models.Notification) string {
	if err := p.MarkRead(ctx, n.ID); err != nil {
		p.log.Warn(ctx, "failed to mark notification read", "id", n.ID, "error", err)
	}
	if n.IncidentID.IsZero() {
		return ""
	}
	p.SetOpen(false)
	return guard.IncidentPath(n.IncidentID.String())
}

func (p *Poller) Subscribe(fn func(State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

func (p *Poller) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Poller) snapshotLocked() State {
	return State{
		Notifications: append([]models.Notification(nil), p.state.Notifications...),
		Unread:        p.state.Unread,
	}
}

// SetOpen shows or hides the dropdown.
func (p *Poller) SetOpen(open bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = open
}

func (p *Poller) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Badge is the text of the unread counter: empty for none, "9+" above nine.
func Badge(unread int) string {
	switch {
	case unread <= 0:
		return ""
	case unread > 9:
		return "9+"
	default:
		return fmt.Sprint(unread)
	}
}

// Age is the relative age of n, e.g. "3 minutes ago".
func Age(n models.Notification, now time.Time) string {
	if n.CreatedAt.IsZero() {
		return ""
	}
	return humanize.RelTime(n.CreatedAt.Time, now, "ago", "from now")
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	unreadStyle = lipgloss.NewStyle().Bold(true)
	readStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	ageStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Render draws the dropdown. Items are numbered from 1 so the user can pick
// one by number.
func (p *Poller) Render() string {
	st := p.Snapshot()
	now := p.now()

	var b strings.Builder
	header := titleStyle.Render("Notifications")
	if st.Unread > 0 {
		header += "  (" + Badge(st.Unread) + " unread, 'read all' to clear)"
	}
	b.WriteString(header)

	if len(st.Notifications) == 0 {
		b.WriteString("\n\nNo notifications yet\nYou'll be notified when there are updates")
		return boxStyle.Render(b.String())
	}

	for i, n := range st.Notifications {
		icon := "📬"
		if n.Type == models.NotificationStatusUpdate {
			icon = "📢"
		}
		style := readStyle
		if !n.Read {
			style = unreadStyle
		}
		fmt.Fprintf(&b, "\n%2d. %s %s", i+1, icon, style.Render(n.Message))
		if age := Age(n, now); age != "" {
			b.WriteString("  " + ageStyle.Render(age))
		}
	}
	return boxStyle.Render(b.String())
}
