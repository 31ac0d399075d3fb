package domain

import (
	"time"

	"github.com/google/uuid"
)

// PageRepository defines the interface for managing site pages.
// It provides methods for creating, retrieving, updating, and deleting pages,
// as well as listing and searching them.
type PageRepository interface {
	// CreatePage persists a new page. It returns an error if the slug is
	// already taken.
	CreatePage(page *Page) error

	// GetPageBySlug retrieves a single page by its unique slug.
	GetPageBySlug(slug string) (*Page, error)

	// GetPageByID retrieves a single page by its ID.
	GetPageByID(id uuid.UUID) (*Page, error)

	// GetPages retrieves pages ordered by most recently updated first.
	// When publishedOnly is true, drafts are excluded.
	GetPages(publishedOnly bool) ([]*Page, error)

	// SearchPages retrieves published pages whose title or body match the
	// query, ordered by most recently updated first.
	SearchPages(query string) ([]*Page, error)

	// UpdatePage persists changes to an existing page, identified by ID.
	UpdatePage(page *Page) error

	// DeletePage removes the page with the given slug.
	DeletePage(slug string) error
}

// Page represents a single piece of site content. The Body holds rendered
// HTML; hooks may rewrite it before persistence or rendering.
type Page struct {
	ID        uuid.UUID // Unique identifier for the page.
	Slug      string    // URL-safe unique identifier, e.g. "about-us".
	Title     string    // Display title.
	Body      string    // Page body as HTML.
	Summary   string    // Short summary used in listings and feeds.
	AuthorID  uuid.UUID // ID of the user who created the page.
	Published bool      // Whether the page is visible to anonymous visitors.
	Tags      []string  // Free-form tags used for listing and graph triples.
	CreatedAt time.Time // Creation timestamp.
	UpdatedAt time.Time // Timestamp of the last update.
}
