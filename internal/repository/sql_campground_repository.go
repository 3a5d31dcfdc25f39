// Package repository contains data access logic separated from HTTP handlers.
// This file holds the SQL (MySQL/SQLite) campground repository.  The ordered
// review reference list lives in the campground_reviews table.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/fishcamp/internal/model"
)

// SQLCampgroundRepo encapsulates all queries related to campgrounds.  It
// depends on a sql.DB connection which is configured by package database.
type SQLCampgroundRepo struct {
	db *sql.DB
}

// NewSQLCampgroundRepo constructs a SQLCampgroundRepo with the provided DB handle.
func NewSQLCampgroundRepo(db *sql.DB) *SQLCampgroundRepo {
	return &SQLCampgroundRepo{db: db}
}

// NewSQLStore bundles the SQL repositories behind a Store whose lifecycle
// owns db.
func NewSQLStore(db *sql.DB) *Store {
	return &Store{
		Campgrounds: NewSQLCampgroundRepo(db),
		Reviews:     NewSQLReviewRepo(db),
		ping:        db.PingContext,
		close:       func(context.Context) error { return db.Close() },
	}
}

const campgroundColumns = "id, title, location, price, description, image, created_at, updated_at"

func scanCampground(row interface{ Scan(...any) error }) (*model.Campground, error) {
	c := new(model.Campground)
	if err := row.Scan(&c.ID, &c.Title, &c.Location, &c.Price, &c.Description, &c.Image, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns every campground ordered by creation time, each with its
// reference list attached.
func (r *SQLCampgroundRepo) List(ctx context.Context) ([]*model.Campground, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+campgroundColumns+" FROM campgrounds ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Campground{}
	byID := map[string]*model.Campground{}
	for rows.Next() {
		c, err := scanCampground(rows)
		if err != nil {
			return nil, err
		}
		c.ReviewIDs = []string{}
		out = append(out, c)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	refs, err := r.db.QueryContext(ctx,
		"SELECT campground_id, review_id FROM campground_reviews ORDER BY campground_id, position")
	if err != nil {
		return nil, err
	}
	defer refs.Close()
	for refs.Next() {
		var cid, rid string
		if err := refs.Scan(&cid, &rid); err != nil {
			return nil, err
		}
		if c, ok := byID[cid]; ok {
			c.ReviewIDs = append(c.ReviewIDs, rid)
		}
	}
	return out, refs.Err()
}

// GetByID fetches a campground and its reference list.  It returns
// ErrCampgroundNotFound if no row is found.
func (r *SQLCampgroundRepo) GetByID(ctx context.Context, id string) (*model.Campground, error) {
	c, err := scanCampground(r.db.QueryRowContext(ctx,
		"SELECT "+campgroundColumns+" FROM campgrounds WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCampgroundNotFound
		}
		return nil, err
	}
	ids, err := referenceList(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	c.ReviewIDs = ids
	return c, nil
}

// Create inserts a new campground.  On success ID, CreatedAt and UpdatedAt
// are populated.  Any ReviewIDs on c are ignored; a new campground starts
// with an empty reference list.
func (r *SQLCampgroundRepo) Create(ctx context.Context, c *model.Campground) error {
	now := time.Now().UTC().Truncate(time.Second)
	id := uuid.NewString()
	const q = "INSERT INTO campgrounds (" + campgroundColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, q, id, c.Title, c.Location, c.Price, c.Description, c.Image, now, now); err != nil {
		return fmt.Errorf("insert campground: %w", err)
	}
	c.ID = id
	c.ReviewIDs = []string{}
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// Update replaces the editable fields of an existing campground.  The
// reference list is not touched; reviews are attached through the review
// repository.
func (r *SQLCampgroundRepo) Update(ctx context.Context, c *model.Campground) error {
	now := time.Now().UTC().Truncate(time.Second)
	const q = `UPDATE campgrounds
	           SET title = ?, location = ?, price = ?, description = ?, image = ?, updated_at = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.Title, c.Location, c.Price, c.Description, c.Image, now, c.ID)
	if err != nil {
		return fmt.Errorf("update campground: %w", err)
	}
	// MySQL reports 0 affected rows when nothing changed, so confirm the
	// row is really missing before reporting not found.
	if n, _ := res.RowsAffected(); n == 0 {
		if err := campgroundExists(ctx, r.db, c.ID); err != nil {
			return err
		}
	}
	c.UpdatedAt = now
	return nil
}

// Delete removes the campground and its reference list.  The referenced
// reviews are left in place.
func (r *SQLCampgroundRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM campground_reviews WHERE campground_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM campgrounds WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCampgroundNotFound
	}
	return tx.Commit()
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func referenceList(ctx context.Context, q queryer, campgroundID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT review_id FROM campground_reviews WHERE campground_id = ? ORDER BY position", campgroundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var rid string
		if err := rows.Scan(&rid); err != nil {
			return nil, err
		}
		ids = append(ids, rid)
	}
	return ids, rows.Err()
}

func campgroundExists(ctx context.Context, q queryer, id string) error {
	var found string
	if err := q.QueryRowContext(ctx, "SELECT id FROM campgrounds WHERE id = ?", id).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCampgroundNotFound
		}
		return err
	}
	return nil
}
