package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/ireporter/internal/client/client"
)

// SessionGuard reports calls rejected with ErrUnauthorized to a handler,
// normally the session's forced logout. Rejections of anonymous calls (no
// stored token) are ignored.
type SessionGuard struct {
	tokens client.TokenSource

	mu      sync.RWMutex
	handler func(ctx context.Context)
}

func NewSessionGuard(tokens client.TokenSource) *SessionGuard {
	return &SessionGuard{tokens: tokens}
}

// OnUnauthorized installs h. It may be called after the services are built.
func (g *SessionGuard) OnUnauthorized(h func(ctx context.Context)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handler = h
}

// check returns err unchanged after notifying the handler when appropriate.
func (g *SessionGuard) check(ctx context.Context, err error) error {
	if g == nil || err == nil || !errors.Is(err, client.ErrUnauthorized) {
		return err
	}

	g.mu.RLock()
	h := g.handler
	g.mu.RUnlock()
	if h == nil || g.tokens == nil {
		return err
	}

	if tok, tokErr := g.tokens.Token(ctx); tokErr == nil && tok != "" {
		h(ctx)
	}
	return err
}
