package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vellum-ws/vellum/domain"
)

var _ domain.PageRepository = (*Repository)(nil)

var (
	// ErrNoPage is returned when a page is not found for a given slug or ID.
	ErrNoPage = errors.New("page not found")

	// ErrSlugTaken is returned when creating a page whose slug already exists.
	ErrSlugTaken = errors.New("slug already taken")
)

// dbPage represents a page as stored in the database.
// It uses the StringList type for its tags field to handle JSON serialization.
type dbPage struct {
	ID        uuid.UUID  `db:"id"`
	Slug      string     `db:"slug"`
	Title     string     `db:"title"`
	Body      string     `db:"body"`
	Summary   string     `db:"summary"`
	AuthorID  uuid.UUID  `db:"author_id"`
	Published bool       `db:"published"`
	Tags      StringList `db:"tags"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// toDomainPage converts a dbPage to a domain.Page.
func toDomainPage(dbPage *dbPage) *domain.Page {
	return &domain.Page{
		ID:        dbPage.ID,
		Slug:      dbPage.Slug,
		Title:     dbPage.Title,
		Body:      dbPage.Body,
		Summary:   dbPage.Summary,
		AuthorID:  dbPage.AuthorID,
		Published: dbPage.Published,
		Tags:      []string(dbPage.Tags),
		CreatedAt: dbPage.CreatedAt,
		UpdatedAt: dbPage.UpdatedAt,
	}
}

// fromDomainPage converts a domain.Page to a dbPage.
func fromDomainPage(page *domain.Page) *dbPage {
	return &dbPage{
		ID:        page.ID,
		Slug:      page.Slug,
		Title:     page.Title,
		Body:      page.Body,
		Summary:   page.Summary,
		AuthorID:  page.AuthorID,
		Published: page.Published,
		Tags:      StringList(page.Tags),
		CreatedAt: page.CreatedAt,
		UpdatedAt: page.UpdatedAt,
	}
}

// CreatePage implements the domain.PageRepository interface.
// It persists a new page to the database.
func (repo *Repository) CreatePage(page *domain.Page) error {
	dbPage := fromDomainPage(page)
	query := `INSERT INTO pages (id, slug, title, body, summary, author_id, published, tags, created_at, updated_at)
	          VALUES (:id, :slug, :title, :body, :summary, :author_id, :published, :tags, :created_at, :updated_at)`

	_, err := repo.dbConn.NamedExec(query, dbPage)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrSlugTaken
		}
		return fmt.Errorf("creating page %s: %w", page.Slug, err)
	}

	return nil
}

// GetPageBySlug implements the domain.PageRepository interface.
// It retrieves a single page by its unique slug.
func (repo *Repository) GetPageBySlug(slug string) (*domain.Page, error) {
	var dbPage dbPage
	query := `SELECT * FROM pages WHERE slug = ?`

	err := repo.dbConn.Get(&dbPage, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoPage
	}
	if err != nil {
		return nil, fmt.Errorf("fetching page %s: %w", slug, err)
	}

	return toDomainPage(&dbPage), nil
}

// GetPageByID implements the domain.PageRepository interface.
// It retrieves a single page by its ID.
func (repo *Repository) GetPageByID(id uuid.UUID) (*domain.Page, error) {
	var dbPage dbPage
	query := `SELECT * FROM pages WHERE id = ?`

	err := repo.dbConn.Get(&dbPage, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoPage
	}
	if err != nil {
		return nil, fmt.Errorf("fetching page %s: %w", id, err)
	}

	return toDomainPage(&dbPage), nil
}

// GetPages implements the domain.PageRepository interface.
// It retrieves pages ordered by most recently updated first, optionally
// excluding drafts.
func (repo *Repository) GetPages(publishedOnly bool) ([]*domain.Page, error) {
	var dbPages []*dbPage
	query := `SELECT * FROM pages ORDER BY updated_at DESC`
	if publishedOnly {
		query = `SELECT * FROM pages WHERE published = 1 ORDER BY updated_at DESC`
	}

	err := repo.dbConn.Select(&dbPages, query)
	if err != nil {
		return nil, fmt.Errorf("fetching all pages: %w", err)
	}

	domainPages := make([]*domain.Page, len(dbPages))
	for i, dbPage := range dbPages {
		domainPages[i] = toDomainPage(dbPage)
	}

	return domainPages, nil
}

// SearchPages implements the domain.PageRepository interface.
// It matches against the page_search table, which holds a lowercased copy
// of each page's title, summary, and body.
func (repo *Repository) SearchPages(searchQuery string) ([]*domain.Page, error) {
	var dbPages []*dbPage
	query := `SELECT pages.* FROM pages
	          JOIN page_search ON page_search.page_id = pages.id
	          WHERE pages.published = 1 AND page_search.content LIKE ?
	          ORDER BY pages.updated_at DESC`

	pattern := "%" + strings.ToLower(searchQuery) + "%"

	err := repo.dbConn.Select(&dbPages, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("searching pages for %q: %w", searchQuery, err)
	}

	domainPages := make([]*domain.Page, len(dbPages))
	for i, dbPage := range dbPages {
		domainPages[i] = toDomainPage(dbPage)
	}

	return domainPages, nil
}

// UpdatePage implements the domain.PageRepository interface.
// It persists changes to an existing page, identified by ID.
func (repo *Repository) UpdatePage(page *domain.Page) error {
	dbPage := fromDomainPage(page)
	query := `UPDATE pages
	          SET slug = :slug, title = :title, body = :body, summary = :summary,
	              published = :published, tags = :tags, updated_at = :updated_at
	          WHERE id = :id`

	result, err := repo.dbConn.NamedExec(query, dbPage)
	if err != nil {
		return fmt.Errorf("updating page %s: %w", page.Slug, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update rows affected for %s: %w", page.Slug, err)
	}

	if rowsAffected == 0 {
		return ErrNoPage
	}

	return nil
}

// DeletePage implements the domain.PageRepository interface.
// It removes the page with the given slug.
func (repo *Repository) DeletePage(slug string) error {
	query := `DELETE FROM pages WHERE slug = ?`

	result, err := repo.dbConn.Exec(query, slug)
	if err != nil {
		return fmt.Errorf("deleting page %s: %w", slug, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deletion rows affected for %s: %w", slug, err)
	}

	if rowsAffected == 0 {
		return ErrNoPage
	}

	return nil
}
