package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session identifies the operator on whose behalf a ledger mutation runs.
// It is passed explicitly through context; there is no process-wide current user.
type Session struct {
	UserID    uuid.UUID
	Username  string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsZero reports whether the session carries no user
func (s Session) IsZero() bool {
	return s.UserID == uuid.Nil
}

type sessionKey struct{}

// WithSession returns a context carrying the session
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored in ctx
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || s.IsZero() {
		return Session{}, false
	}
	return s, true
}

// RequireSession returns the session or ErrUnauthorized
func RequireSession(ctx context.Context) (Session, error) {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return Session{}, ErrUnauthorized
	}
	return s, nil
}
