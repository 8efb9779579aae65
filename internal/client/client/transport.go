package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
)

// TokenSource yields the current bearer token, "" when logged out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

type anonymousKey struct{}

// anonymous marks ctx so the transport sends no Authorization header.
func anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey{}).(bool)
	return v
}

// bearerTransport stamps every outgoing request with a request id and the
// token current at send time.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}

	req.Header.Del(HeaderAuthorization)
	if t.tokens != nil && !isAnonymous(req.Context()) {
		token, err := t.tokens.Token(req.Context())
		if err != nil {
			return nil, err
		}
		if token != "" {
			req.Header.Set(HeaderAuthorization, "Bearer "+token)
		}
	}

	return t.base.RoundTrip(req)
}
