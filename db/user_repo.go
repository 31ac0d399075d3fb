package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vellum-ws/vellum/domain"
)

var _ domain.UserRepository = (*Repository)(nil)

var (
	// ErrNoUser is returned when a user is not found for a given ID or username.
	ErrNoUser = errors.New("user not found")
)

// dbUser represents a user as stored in the database.
type dbUser struct {
	ID           uuid.UUID `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Salt         string    `db:"salt"`
	Admin        bool      `db:"admin"`
	CreatedAt    time.Time `db:"created_at"`
}

// toDomainUser converts a dbUser to a domain.User.
func toDomainUser(dbUser *dbUser) *domain.User {
	return &domain.User{
		ID:           dbUser.ID,
		Username:     dbUser.Username,
		Email:        dbUser.Email,
		PasswordHash: dbUser.PasswordHash,
		Salt:         dbUser.Salt,
		Admin:        dbUser.Admin,
		CreatedAt:    dbUser.CreatedAt,
	}
}

// fromDomainUser converts a domain.User to a dbUser.
func fromDomainUser(user *domain.User) *dbUser {
	return &dbUser{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Salt:         user.Salt,
		Admin:        user.Admin,
		CreatedAt:    user.CreatedAt,
	}
}

// CreateUser implements the domain.UserRepository interface.
// It persists a new user to the database.
func (repo *Repository) CreateUser(user *domain.User) error {
	dbUser := fromDomainUser(user)
	query := `INSERT INTO users (id, username, email, password_hash, salt, admin, created_at)
	          VALUES (:id, :username, :email, :password_hash, :salt, :admin, :created_at)`

	_, err := repo.dbConn.NamedExec(query, dbUser)
	if err != nil {
		return fmt.Errorf("creating user %s: %w", user.Username, err)
	}

	return nil
}

// GetUserByID implements the domain.UserRepository interface.
// It retrieves a single user by its ID.
func (repo *Repository) GetUserByID(id uuid.UUID) (*domain.User, error) {
	var dbUser dbUser
	query := `SELECT * FROM users WHERE id = ?`

	err := repo.dbConn.Get(&dbUser, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoUser
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", id, err)
	}

	return toDomainUser(&dbUser), nil
}

// GetUserByUsername implements the domain.UserRepository interface.
// It retrieves a single user by its unique username.
func (repo *Repository) GetUserByUsername(username string) (*domain.User, error) {
	var dbUser dbUser
	query := `SELECT * FROM users WHERE username = ?`

	err := repo.dbConn.Get(&dbUser, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoUser
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", username, err)
	}

	return toDomainUser(&dbUser), nil
}

// UpdateUser implements the domain.UserRepository interface.
// It persists changes to an existing user, identified by ID.
func (repo *Repository) UpdateUser(user *domain.User) error {
	dbUser := fromDomainUser(user)
	query := `UPDATE users
	          SET username = :username, email = :email, password_hash = :password_hash,
	              salt = :salt, admin = :admin
	          WHERE id = :id`

	result, err := repo.dbConn.NamedExec(query, dbUser)
	if err != nil {
		return fmt.Errorf("updating user %s: %w", user.Username, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update rows affected for %s: %w", user.Username, err)
	}

	if rowsAffected == 0 {
		return ErrNoUser
	}

	return nil
}
