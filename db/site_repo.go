package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vellum-ws/vellum/domain"
)

var _ domain.SiteRepository = (*Repository)(nil)

var (
	// ErrNoSetting is returned when a site setting has never been set.
	ErrNoSetting = errors.New("site setting not found")
)

// dbSetting represents a single site setting as stored in the database.
type dbSetting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// GetSetting implements the domain.SiteRepository interface.
// It retrieves a single site setting by key from the 'site' table.
func (repo *Repository) GetSetting(key string) (string, error) {
	var value string
	query := `SELECT value FROM site WHERE key = ?`

	err := repo.dbConn.Get(&value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoSetting
	}
	if err != nil {
		return "", fmt.Errorf("getting setting %s: %w", key, err)
	}

	return value, nil
}

// SetSetting implements the domain.SiteRepository interface.
// It updates a single site setting in the 'site' table, creating it if missing.
func (repo *Repository) SetSetting(key string, value string) error {
	query := `INSERT INTO site(key, value)
	          VALUES (?, ?)
	          ON CONFLICT(key) DO UPDATE SET value=excluded.value`

	_, err := repo.dbConn.Exec(query, key, value)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	return nil
}

// GetSettings implements the domain.SiteRepository interface.
// It retrieves all site settings from the 'site' table as a key-value map.
func (repo *Repository) GetSettings() (map[string]string, error) {
	var dbSettings []dbSetting
	query := `SELECT key, value FROM site`

	err := repo.dbConn.Select(&dbSettings, query)
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}

	settings := make(map[string]string, len(dbSettings))
	for _, setting := range dbSettings {
		settings[setting.Key] = setting.Value
	}

	return settings, nil
}
