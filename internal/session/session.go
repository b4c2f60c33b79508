// Package session carries the authenticated caller of a single request.
// Each request resolves its own Session from the bearer token; nothing is shared between requests.
package session

import (
	"context"

	"supplies-service/internal/model"
)

// Session identifies the caller
type Session struct {
	UserID string
	Email  string
	Role   model.Role
}

type contextKey struct{}

// WithSession stores the session in the context
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session of the request, if authenticated
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

