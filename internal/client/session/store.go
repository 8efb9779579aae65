package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/ireporter/internal/client/models"
	sessionrepo "github.com/dmitrijs2005/ireporter/internal/client/repositories/session"
	"github.com/dmitrijs2005/ireporter/internal/client/services"
	"github.com/dmitrijs2005/ireporter/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LoginPath          = "/login"
	LinkedNoticeDelay  = time.Second
	loginFallback      = "Login failed"
	registerFallback   = "Registration failed"
	verifyFallback     = "Email verification failed"
	linkedNoticeFormat = "%d anonymous incident(s) have been linked to your account!"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Notifier is the part of the notice package the store needs.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	InfoAfter(d time.Duration, msg string)
}

// Snapshot is the state handed to observers.
type Snapshot struct {
	User          *models.User
	Authenticated bool
	Admin         bool
	Loading       bool
}

// Result is what Login, Register and VerifyEmail report to a view.
type Result struct {
	Success bool
	Error   string
	Data    *models.AuthResponse
}

type Option func(*Store)

func WithNotifier(n Notifier) Option { return func(s *Store) { s.notifier = n } }

// WithNavigator sets the function called with LoginPath on logout.
func WithNavigator(fn func(path string)) Option { return func(s *Store) { s.navigate = fn } }

func WithLogger(l logging.Logger) Option { return func(s *Store) { s.log = l } }

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// WithLinkedNoticeDelay overrides LinkedNoticeDelay.
func WithLinkedNoticeDelay(d time.Duration) Option { return func(s *Store) { s.linkedDelay = d } }

type Store struct {
	repo        sessionrepo.Repository
	users       services.UserService
	notifier    Notifier
	navigate    func(string)
	log         logging.Logger
	now         func() time.Time
	linkedDelay time.Duration

	mu        sync.RWMutex
	user      *models.User
	loading   bool
	observers []func(Snapshot)

	ready     chan struct{}
	readyOnce sync.Once
}

func New(repo sessionrepo.Repository, users services.UserService, opts ...Option) *Store {
	s := &Store{
		repo:        repo,
		users:       users,
		log:         logging.Nop(),
		now:         time.Now,
		linkedDelay: LinkedNoticeDelay,
		loading:     true,
		ready:       make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Initialize restores the session from the persisted token. Any failure
// leaves the store logged out; nothing is returned to the caller.
func (s *Store) Initialize(ctx context.Context) {
	defer s.finishLoading()

	token, err := s.repo.Token(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to read persisted token", "error", err)
		return
	}
	if token == "" {
		return
	}

	if expired(token, s.now()) {
		s.log.Info(ctx, "persisted token has expired")
		s.discard(ctx)
		return
	}

	u, err := s.users.Me(ctx)
	if err != nil {
		s.log.Info(ctx, "persisted token rejected", "error", err)
		s.discard(ctx)
		return
	}
	if err := s.repo.SaveUser(ctx, u); err != nil {
		s.log.Warn(ctx, "failed to cache user", "error", err)
	}

	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// expired reports whether token is a JWT whose exp claim lies before now.
// Opaque or malformed tokens are left for the backend to judge.
func expired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(now)
}

func (s *Store) finishLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
	s.publish()
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// WaitReady blocks until Initialize has completed or ctx is done.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) Login(ctx context.Context, email, password string) Result {
	resp, err := s.users.Login(ctx, email, password)
	if err != nil {
		s.log.Info(ctx, "login failed", "error", err)
		return Result{Error: services.Message(err, loginFallback)}
	}
	if resp == nil || resp.Token == "" || resp.User == nil {
		return Result{Error: loginFallback}
	}
	if err := s.establish(ctx, resp.Token, resp.User); err != nil {
		s.log.Error(ctx, "failed to persist session", "error", err)
		return Result{Error: loginFallback}
	}
	s.announceLinked(resp.LinkedIncidents)
	return Result{Success: true, Data: resp}
}

// Register creates an account. When the backend issues a token the new
// account is logged in; otherwise the session stays empty.
func (s *Store) Register(ctx context.Context, form services.RegisterForm) Result {
	resp, err := s.users.Register(ctx, form)
	if err != nil {
		s.log.Info(ctx, "registration failed", "error", err)
		return Result{Error: services.Message(err, registerFallback)}
	}
	if resp == nil {
		return Result{Error: registerFallback}
	}
	if resp.Token != "" && resp.User != nil {
		if err := s.establish(ctx, resp.Token, resp.User); err != nil {
			s.log.Error(ctx, "failed to persist session", "error", err)
			return Result{Error: registerFallback}
		}
		s.announceLinked(resp.LinkedIncidents)
	}
	return Result{Success: true, Data: resp}
}

// VerifyEmail confirms an address. A token in the reply logs the user in.
func (s *Store) VerifyEmail(ctx context.Context, token string) Result {
	resp, err := s.users.VerifyEmail(ctx, token)
	if err != nil {
		return Result{Error: services.Message(err, verifyFallback)}
	}
	if resp != nil && resp.Token != "" && resp.User != nil {
		if err := s.establish(ctx, resp.Token, resp.User); err != nil {
			s.log.Error(ctx, "failed to persist session", "error", err)
			return Result{Error: verifyFallback}
		}
	}
	return Result{Success: true, Data: resp}
}

func (s *Store) establish(ctx context.Context, token string, u *models.User) error {
	cp := *u
	cp.Normalize()
	if err := s.repo.Save(ctx, token, &cp); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.mu.Lock()
	s.user = &cp
	s.mu.Unlock()
	s.publish()
	return nil
}

func (s *Store) announceLinked(n int) {
	if n <= 0 || s.notifier == nil {
		return
	}
	s.notifier.InfoAfter(s.linkedDelay, fmt.Sprintf(linkedNoticeFormat, n))
}

// Logout ends the session locally and navigates to the login view. It never
// contacts the backend.
func (s *Store) Logout(ctx context.Context) {
	s.discard(ctx)
	if s.navigate != nil {
		s.navigate(LoginPath)
	}
}

// ForceLogout is Logout triggered by a rejected token. It does nothing when
// the session is already empty.
func (s *Store) ForceLogout(ctx context.Context) {
	if !s.IsAuthenticated() {
		tok, err := s.repo.Token(ctx)
		if err != nil || tok == "" {
			return
		}
	}
	s.log.Info(ctx, "session expired, logging out")
	if s.notifier != nil {
		s.notifier.Warn("Your session has expired. Please log in again.")
	}
	s.Logout(ctx)
}

func (s *Store) discard(ctx context.Context) {
	if err := s.repo.Clear(ctx); err != nil {
		s.log.Error(ctx, "failed to clear session", "error", err)
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.publish()
}

// Refresh re-fetches the current user, picking up role changes.
func (s *Store) Refresh(ctx context.Context) error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	u, err := s.users.Me(ctx)
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	if err := s.repo.SaveUser(ctx, u); err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	s.publish()
	return nil
}

// UpdateProfile changes the name or email of the current user. The cached
// snapshot is replaced with the backend's reply.
func (s *Store) UpdateProfile(ctx context.Context, p models.ProfileUpdate) error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	u, err := s.users.UpdateProfile(ctx, p)
	if err != nil {
		return err
	}
	if u == nil {
		return s.Refresh(ctx)
	}
	if err := s.repo.SaveUser(ctx, u); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
	s.publish()
	return nil
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Admin()
}

// User returns a copy of the snapshot, or nil when logged out.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

// Token reads the persisted token at call time.
func (s *Store) Token(ctx context.Context) (string, error) {
	return s.repo.Token(ctx)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{Loading: s.loading}
	if s.user != nil {
		cp := *s.user
		snap.User = &cp
		snap.Authenticated = true
		snap.Admin = cp.Admin()
	}
	return snap
}

// Subscribe registers fn to be called after every session change.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Store) publish() {
	s.mu.RLock()
	snap := s.snapshotLocked()
	obs := append(([]func(Snapshot))(nil), s.observers...)
	s.mu.RUnlock()

	for _, fn := range obs {
		fn(snap)
	}
}
