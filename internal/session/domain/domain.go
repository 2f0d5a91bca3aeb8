package domain

import (
	"context"
	"time"
)

// Session represents one authenticated principal's active login. It is
// reachable by two keys in the TTL store: `session:<user_id>` holds the
// serialized record, `token:<token>` holds a bare user_id back-reference.
// Both keys are written with the same TTL at every mutation.
type Session struct {
	// UserID is the caller-supplied identity. One active session per user.
	UserID string `json:"user_id"`

	// SessionToken is a server-generated opaque bearer credential.
	SessionToken string `json:"session_token"`

	// LoginTime is captured at creation and never changes.
	LoginTime time.Time `json:"login_time"`

	// LastActive is bumped on every touch.
	LastActive time.Time `json:"last_active"`
}

// Manager owns the session lifecycle. Read paths report absence as a nil
// session (or empty user id), never as an error; storage failures propagate.
// Mutations also re-raise a failed audit write, with the session store
// change already applied at that point.
type Manager interface {
	// Create generates a token and writes both keys, overwriting any prior
	// session for the user. The superseded token pointer is left to expire
	// on its own TTL.
	Create(ctx context.Context, userID string) (*Session, error)

	// Get returns the session for a user, or nil when missing or expired.
	Get(ctx context.Context, userID string) (*Session, error)

	// Delete removes both keys. Returns the user-keyed deletion count
	// (0 when no session existed; the call is then a silent no-op).
	Delete(ctx context.Context, userID string) (int64, error)

	// Touch bumps last_active and rewrites both keys with a fresh TTL.
	// Returns nil when no session exists.
	Touch(ctx context.Context, userID string) (*Session, error)

	// UserIDByToken resolves the token back-reference. Returns "" when the
	// token is unknown or expired.
	UserIDByToken(ctx context.Context, token string) (string, error)
}
