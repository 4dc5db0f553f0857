// Package session implements server-side cookie sessions. A session is a
// row in the sessions table keyed by a random identifier carried in an
// HttpOnly cookie; presence of a live row is the application's sole
// authentication signal.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is a server-side session record.
type Session struct {
	ID        string
	UserID    int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// New creates a session for userID with a fresh random identifier.
func New(userID int, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// Store defines how sessions are persisted and retrieved.
type Store interface {
	Create(ctx context.Context, s *Session) error
	// Find returns the session with the given id, or nil when it does not
	// exist or has expired.
	Find(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID int) error
}
