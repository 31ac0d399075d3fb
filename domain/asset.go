package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssetRepository defines the interface for managing uploaded files.
type AssetRepository interface {
	// CreateAsset persists a new asset, content included.
	CreateAsset(asset *Asset) error

	// GetAssetByID retrieves a single asset by its ID.
	GetAssetByID(id uuid.UUID) (*Asset, error)

	// GetAssets retrieves metadata for all assets. Content is not loaded.
	GetAssets() ([]Asset, error)

	// DeleteAsset removes an asset, identified by ID.
	DeleteAsset(id uuid.UUID) error
}

// Asset is an uploaded file served under /assets/{id}. ContentType is
// sniffed from the content on upload, never trusted from the client.
type Asset struct {
	ID          uuid.UUID // Unique identifier for the asset.
	Filename    string    // Original filename, as uploaded.
	ContentType string    // Detected media type.
	Size        int64     // Content length in bytes.
	Content     []byte    // Raw file content.
	UploaderID  uuid.UUID // User who uploaded the asset.
	CreatedAt   time.Time // Upload timestamp.
}
