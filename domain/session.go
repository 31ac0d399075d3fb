package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionRepository defines the interface for managing login sessions.
type SessionRepository interface {
	// CreateSession persists a new session for a user.
	CreateSession(session *Session) error

	// GetSessionByToken retrieves a session by its opaque token.
	GetSessionByToken(token string) (*Session, error)

	// DeleteSession removes a session, identified by its token.
	DeleteSession(token string) error

	// DeleteExpiredSessions removes all sessions past their expiry.
	DeleteExpiredSessions() error
}

// Session ties an opaque cookie token to a user for a limited time.
type Session struct {
	Token     string    // Opaque random token stored in the cookie.
	UserID    uuid.UUID // User the session belongs to.
	CreatedAt time.Time // Creation timestamp.
	ExpiresAt time.Time // Expiry, after which the session is invalid.
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
