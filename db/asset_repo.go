package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vellum-ws/vellum/domain"
)

var _ domain.AssetRepository = (*Repository)(nil)

var (
	// ErrNoAsset is returned when an asset is not found for a given ID.
	ErrNoAsset = errors.New("asset not found")
)

// dbAsset represents an asset as stored in the database.
type dbAsset struct {
	ID          uuid.UUID `db:"id"`
	Filename    string    `db:"filename"`
	ContentType string    `db:"content_type"`
	Size        int64     `db:"size"`
	Content     []byte    `db:"content"`
	UploaderID  uuid.UUID `db:"uploader_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// toDomainAsset converts a dbAsset to a domain.Asset.
func toDomainAsset(dbAsset *dbAsset) *domain.Asset {
	return &domain.Asset{
		ID:          dbAsset.ID,
		Filename:    dbAsset.Filename,
		ContentType: dbAsset.ContentType,
		Size:        dbAsset.Size,
		Content:     dbAsset.Content,
		UploaderID:  dbAsset.UploaderID,
		CreatedAt:   dbAsset.CreatedAt,
	}
}

// CreateAsset implements the domain.AssetRepository interface.
// It persists a new asset, content included.
func (repo *Repository) CreateAsset(asset *domain.Asset) error {
	query := `INSERT INTO assets (id, filename, content_type, size, content, uploader_id, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := repo.dbConn.Exec(query, asset.ID, asset.Filename, asset.ContentType, asset.Size, asset.Content, asset.UploaderID, asset.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating asset %s: %w", asset.Filename, err)
	}

	return nil
}

// GetAssetByID implements the domain.AssetRepository interface.
// It retrieves a single asset by its ID, content included.
func (repo *Repository) GetAssetByID(id uuid.UUID) (*domain.Asset, error) {
	var dbAsset dbAsset
	query := `SELECT * FROM assets WHERE id = ?`

	err := repo.dbConn.Get(&dbAsset, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAsset
	}
	if err != nil {
		return nil, fmt.Errorf("fetching asset %s: %w", id, err)
	}

	return toDomainAsset(&dbAsset), nil
}

// GetAssets implements the domain.AssetRepository interface.
// It retrieves metadata for all assets without loading their content.
func (repo *Repository) GetAssets() ([]domain.Asset, error) {
	var dbAssets []*dbAsset
	query := `SELECT id, filename, content_type, size, uploader_id, created_at FROM assets
	          ORDER BY created_at DESC`

	err := repo.dbConn.Select(&dbAssets, query)
	if err != nil {
		return nil, fmt.Errorf("fetching all assets: %w", err)
	}

	domainAssets := make([]domain.Asset, len(dbAssets))
	for i, dbAsset := range dbAssets {
		domainAssets[i] = *toDomainAsset(dbAsset)
	}

	return domainAssets, nil
}

// DeleteAsset implements the domain.AssetRepository interface.
// It removes an asset, identified by ID.
func (repo *Repository) DeleteAsset(id uuid.UUID) error {
	query := `DELETE FROM assets WHERE id = ?`

	result, err := repo.dbConn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("deleting asset %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deletion rows affected for %s: %w", id, err)
	}

	if rowsAffected == 0 {
		return ErrNoAsset
	}

	return nil
}
