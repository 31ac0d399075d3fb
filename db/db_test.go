package db

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vellum-ws/vellum/domain"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test_*.db")
	if err != nil {
		t.Fatalf("os.CreateTemp() failed: %v", err)
	}
	tempFile.Close()

	dbConn, err := New(tempFile.Name())
	if err != nil {
		t.Fatalf("db.New() failed: %v", err)
	}

	repo := NewRepo(dbConn)

	teardown := func() {
		repo.Close()
		os.Remove(tempFile.Name())
	}

	return repo, teardown
}

func testUser(t *testing.T, repo *Repository, username string) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("creating uuid: %v", err)
	}

	user := &domain.User{
		ID:           id,
		Username:     username,
		Email:        username + "@vellum.ws",
		PasswordHash: "0f1e2d3c",
		Salt:         "a1b2c3d4",
		Admin:        true,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	err = repo.CreateUser(user)
	if err != nil {
		t.Fatalf("inserting user: %v", err)
	}
	return id
}

func testPage(t *testing.T, repo *Repository, authorID uuid.UUID, slug string, published bool) *domain.Page {
	t.Helper()
	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("creating uuid: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	page := &domain.Page{
		ID:        id,
		Slug:      slug,
		Title:     "Hello Vellum",
		Body:      "<p>First page body</p>",
		Summary:   "First page",
		AuthorID:  authorID,
		Published: published,
		Tags:      []string{"intro"},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = repo.CreatePage(page)
	if err != nil {
		t.Fatalf("inserting page: %v", err)
	}
	return page
}

func testPageStruct(id uuid.UUID, authorID uuid.UUID, slug string) *domain.Page {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Page{
		ID:        id,
		Slug:      slug,
		Title:     "Hello Vellum",
		Body:      "<p>First page body</p>",
		Summary:   "First page",
		AuthorID:  authorID,
		Published: true,
		Tags:      []string{"intro"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
