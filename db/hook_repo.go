package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vellum-ws/vellum/domain"
)

var (
	_ domain.HookRepository = (*Repository)(nil)

	// ErrNoHook is returned when a hook is not found for a given name or ID.
	ErrNoHook = errors.New("hook not found")
)

// dbHook represents the structure of a hook as stored in the database.
// It uses the Metadata type for its settings field to handle JSON serialization.
type dbHook struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Author      string    `db:"author"`
	LuaContent  string    `db:"lua_content"`
	Enabled     bool      `db:"enabled"`
	Description string    `db:"description"`
	Settings    Metadata  `db:"settings"`
	UpdatedAt   time.Time `db:"update_at"`
}

// toDomainHook converts a dbHook struct to its domain.Hook representation.
func toDomainHook(dbHook *dbHook) *domain.Hook {
	return &domain.Hook{
		ID:          dbHook.ID,
		Name:        dbHook.Name,
		Author:      dbHook.Author,
		LuaContent:  dbHook.LuaContent,
		Enabled:     dbHook.Enabled,
		Description: dbHook.Description,
		Settings:    map[string]any(dbHook.Settings),
		UpdatedAt:   dbHook.UpdatedAt,
	}
}

// GetHooks implements the domain.HookRepository interface.
// It retrieves all hooks from the database and converts them to domain.Hook objects.
func (repo *Repository) GetHooks() ([]*domain.Hook, error) {
	var dbHooks []*dbHook
	query := `SELECT * FROM hooks ORDER BY id ASC`

	err := repo.dbConn.Select(&dbHooks, query)
	if err != nil {
		return nil, fmt.Errorf("fetching all hooks: %w", err)
	}

	domainHooks := make([]*domain.Hook, len(dbHooks))

	for i, dbHook := range dbHooks {
		domainHooks[i] = toDomainHook(dbHook)
	}
	return domainHooks, nil
}

// GetHookByName implements the domain.HookRepository interface.
// It retrieves a single hook by its name and converts it to a domain.Hook object.
func (repo *Repository) GetHookByName(name string) (*domain.Hook, error) {
	var dbHook dbHook
	query := `SELECT * FROM hooks WHERE name = ?`

	err := repo.dbConn.Get(&dbHook, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoHook
	}
	if err != nil {
		return nil, fmt.Errorf("fetching hook %s: %w", name, err)
	}

	return toDomainHook(&dbHook), nil
}

// GetHookLuaCodeByName implements the domain.HookRepository interface.
// It retrieves the Lua source code of a hook by its name.
func (repo *Repository) GetHookLuaCodeByName(name string) (string, error) {
	var code string
	query := `SELECT lua_content FROM hooks WHERE name = ?`

	err := repo.dbConn.Get(&code, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoHook
	}
	if err != nil {
		return "", fmt.Errorf("getting hook %s code: %v", name, err)
	}

	return code, nil
}

// UpdateHookLuaCodeByName implements the domain.HookRepository interface.
// It updates the Lua source code of an existing hook identified by its name.
func (repo *Repository) UpdateHookLuaCodeByName(name string, code string) error {
	query := `UPDATE hooks SET lua_content = ? WHERE name = ?`

	_, err := repo.dbConn.Exec(query, code, name)

	if err != nil {
		return fmt.Errorf("updating hook %s code: %v", name, err)
	}

	return nil
}

// GetHookSettingsByUUID implements the domain.HookRepository interface.
// It retrieves the settings of a hook by its UUID.
func (repo *Repository) GetHookSettingsByUUID(id uuid.UUID) (map[string]any, error) {
	var settings Metadata
	query := `SELECT settings FROM hooks WHERE id = ?`

	err := repo.dbConn.Get(&settings, query, id)
	if err != nil {
		return nil, fmt.Errorf("fetching hook %s settings: %w", id, err)
	}

	return map[string]any(settings), nil
}

// SetHookSettingsByUUID implements the domain.HookRepository interface.
// It updates the settings of an existing hook identified by its UUID.
func (repo *Repository) SetHookSettingsByUUID(id uuid.UUID, settings map[string]any) error {
	dbSettings := Metadata(settings)
	query := `UPDATE hooks SET settings = ? WHERE id = ?`

	_, err := repo.dbConn.Exec(query, dbSettings, id)
	if err != nil {
		return fmt.Errorf("updating settings for hook %s: %w", id, err)
	}

	return nil
}
