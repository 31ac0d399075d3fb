package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for managing site accounts.
type UserRepository interface {
	// CreateUser persists a new user. It returns an error if the username
	// is already taken.
	CreateUser(user *User) error

	// GetUserByID retrieves a single user by its ID.
	GetUserByID(id uuid.UUID) (*User, error)

	// GetUserByUsername retrieves a single user by its unique username.
	GetUserByUsername(username string) (*User, error)

	// UpdateUser persists changes to an existing user, identified by ID.
	UpdateUser(user *User) error
}

// User represents a site account. PasswordHash holds a salted SHA-256
// digest; the plaintext password is never stored.
type User struct {
	ID           uuid.UUID // Unique identifier for the user.
	Username     string    // Unique login name.
	Email        string    // Contact address, shown on author pages.
	PasswordHash string    // Hex-encoded salted digest of the password.
	Salt         string    // Per-user random salt.
	Admin        bool      // Whether the user may access the admin area.
	CreatedAt    time.Time // Creation timestamp.
}
