package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is valid for both MySQL and SQLite.  campground_reviews holds the
// ordered reference list; it carries no foreign keys because the references
// are weak and may outlive the review they point at.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS campgrounds (
		id          VARCHAR(36)   NOT NULL PRIMARY KEY,
		title       VARCHAR(255)  NOT NULL,
		location    VARCHAR(255)  NOT NULL,
		price       DOUBLE        NOT NULL,
		description TEXT          NOT NULL,
		image       VARCHAR(1024) NOT NULL,
		created_at  DATETIME      NOT NULL,
		updated_at  DATETIME      NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id         VARCHAR(36) NOT NULL PRIMARY KEY,
		body       TEXT        NOT NULL,
		rating     INT         NOT NULL,
		created_at DATETIME    NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS campground_reviews (
		campground_id VARCHAR(36) NOT NULL,
		review_id     VARCHAR(36) NOT NULL,
		position      INT         NOT NULL,
		PRIMARY KEY (campground_id, review_id),
		UNIQUE (campground_id, position)
	)`,
}

// Migrate creates the tables used by the SQL repositories.  It is safe to
// run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
