package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

func init() {
	goose.AddMigrationContext(upPageSearch, downPageSearch)
}

// upPageSearch adds a lowercased search table for pages and backfills it
// from the existing rows. Triggers keep it in sync with the pages table,
// so SearchPages can match case-insensitively without scanning page bodies.
func upPageSearch(ctx context.Context, tx *sql.Tx) error {
	createQuery := `
		CREATE TABLE page_search (
		    page_id TEXT PRIMARY KEY REFERENCES pages(id) ON DELETE CASCADE,
		    content TEXT NOT NULL
		);
	`
	_, err := tx.Exec(createQuery)
	if err != nil {
		return fmt.Errorf("creating page_search table : %w", err)
	}

	rows, err := tx.Query("SELECT id, title, summary, body FROM pages")
	if err != nil {
		return fmt.Errorf("getting all pages: %w", err)
	}
	defer rows.Close()

	type searchRow struct {
		id      string
		content string
	}
	var backfill []searchRow

	for rows.Next() {
		var id, title, summary, body string
		err := rows.Scan(&id, &title, &summary, &body)
		if err != nil {
			return fmt.Errorf("scanning page row: %w", err)
		}
		content := strings.ToLower(strings.Join([]string{title, summary, body}, "\n"))
		backfill = append(backfill, searchRow{id: id, content: content})
	}
	err = rows.Err()
	if err != nil {
		return fmt.Errorf("iterating page rows: %w", err)
	}

	for _, row := range backfill {
		_, err = tx.Exec("INSERT INTO page_search (page_id, content) VALUES (?, ?)", row.id, row.content)
		if err != nil {
			return fmt.Errorf("backfilling search for page %s : %w", row.id, err)
		}
	}

	triggerQuery := `
		CREATE TRIGGER pages_search_insert AFTER INSERT ON pages
		BEGIN
		    INSERT INTO page_search (page_id, content)
		    VALUES (NEW.id, lower(NEW.title || char(10) || NEW.summary || char(10) || NEW.body));
		END;

		CREATE TRIGGER pages_search_update AFTER UPDATE ON pages
		BEGIN
		    UPDATE page_search
		    SET content = lower(NEW.title || char(10) || NEW.summary || char(10) || NEW.body)
		    WHERE page_id = NEW.id;
		END;
	`
	_, err = tx.Exec(triggerQuery)
	if err != nil {
		return fmt.Errorf("creating page_search triggers : %w", err)
	}

	return nil
}

func downPageSearch(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.Exec(`DROP TRIGGER pages_search_update`); err != nil {
		return fmt.Errorf("dropping pages_search_update trigger for rollback: %w", err)
	}
	if _, err := tx.Exec(`DROP TRIGGER pages_search_insert`); err != nil {
		return fmt.Errorf("dropping pages_search_insert trigger for rollback: %w", err)
	}
	if _, err := tx.Exec(`DROP TABLE page_search`); err != nil {
		return fmt.Errorf("dropping page_search table for rollback: %w", err)
	}
	return nil
}
