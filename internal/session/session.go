// Package session carries the identity of whoever is looking at the board.
// Sessions are created explicitly and passed through context; nothing here
// grants or denies access.
package session

import (
	"context"

	"github.com/google/uuid"
)

// Session identifies a viewer.
type Session struct {
	ID   string `json:"id"`
	User string `json:"user"`
	Role string `json:"role"`
}

// New returns a session with a fresh random id.
func New(user, role string) Session {
	return Session{ID: uuid.NewString(), User: user, Role: role}
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
