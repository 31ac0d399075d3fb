package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vellum-ws/vellum/domain"
)

var _ domain.SessionRepository = (*Repository)(nil)

var (
	// ErrNoSession is returned when no session exists for a given token.
	ErrNoSession = errors.New("session not found")
)

// dbSession represents a session as stored in the database.
type dbSession struct {
	Token     string    `db:"token"`      // Opaque random token stored in the cookie.
	UserID    uuid.UUID `db:"user_id"`    // User the session belongs to.
	CreatedAt time.Time `db:"created_at"` // Creation timestamp.
	ExpiresAt time.Time `db:"expires_at"` // Expiry timestamp.
}

// toDomainSession converts a dbSession to a domain.Session.
func toDomainSession(dbSession *dbSession) *domain.Session {
	return &domain.Session{
		Token:     dbSession.Token,
		UserID:    dbSession.UserID,
		CreatedAt: dbSession.CreatedAt,
		ExpiresAt: dbSession.ExpiresAt,
	}
}

// CreateSession implements the domain.SessionRepository interface.
// It persists a new session to the database.
func (repo *Repository) CreateSession(session *domain.Session) error {
	query := `INSERT INTO sessions (token, user_id, created_at, expires_at)
	          VALUES (?, ?, ?, ?)`

	_, err := repo.dbConn.Exec(query, session.Token, session.UserID, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("creating session for user %s: %w", session.UserID, err)
	}

	return nil
}

// GetSessionByToken implements the domain.SessionRepository interface.
// It retrieves a session by its opaque token.
func (repo *Repository) GetSessionByToken(token string) (*domain.Session, error) {
	var dbSession dbSession
	query := `SELECT * FROM sessions WHERE token = ?`

	err := repo.dbConn.Get(&dbSession, query, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("fetching session: %w", err)
	}

	return toDomainSession(&dbSession), nil
}

// DeleteSession implements the domain.SessionRepository interface.
// It removes a session, identified by its token.
func (repo *Repository) DeleteSession(token string) error {
	query := `DELETE FROM sessions WHERE token = ?`

	result, err := repo.dbConn.Exec(query, token)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deletion rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNoSession
	}

	return nil
}

// DeleteExpiredSessions implements the domain.SessionRepository interface.
// It removes all sessions past their expiry.
func (repo *Repository) DeleteExpiredSessions() error {
	query := `DELETE FROM sessions WHERE expires_at < ?`

	_, err := repo.dbConn.Exec(query, time.Now())
	if err != nil {
		return fmt.Errorf("deleting expired sessions: %w", err)
	}

	return nil
}
