package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/fishcamp/internal/model"
)

// SQLReviewRepo stores reviews and maintains campground_reviews.  Both
// two-step operations run in a single transaction.
type SQLReviewRepo struct {
	db *sql.DB
}

func NewSQLReviewRepo(db *sql.DB) *SQLReviewRepo {
	return &SQLReviewRepo{db: db}
}

// GetByID fetches a single review or ErrReviewNotFound.
func (r *SQLReviewRepo) GetByID(ctx context.Context, id string) (*model.Review, error) {
	var rv model.Review
	err := r.db.QueryRowContext(ctx,
		"SELECT id, body, rating, created_at FROM reviews WHERE id = ?", id).
		Scan(&rv.ID, &rv.Body, &rv.Rating, &rv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &rv, nil
}

// ListByIDs resolves a reference list in one query.
func (r *SQLReviewRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.Review, error) {
	if len(ids) == 0 {
		return []*model.Review{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := "SELECT id, body, rating, created_at FROM reviews WHERE id IN (?" +
		strings.Repeat(", ?", len(ids)-1) + ")"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[string]*model.Review, len(ids))
	for rows.Next() {
		rv := new(model.Review)
		if err := rows.Scan(&rv.ID, &rv.Body, &rv.Rating, &rv.CreatedAt); err != nil {
			return nil, err
		}
		found[rv.ID] = rv
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orderByIDs(ids, found), nil
}

// AddToCampground inserts rv and appends its id to the campground's
// reference list.  rv.ID and rv.CreatedAt are populated on success.
func (r *SQLReviewRepo) AddToCampground(ctx context.Context, campgroundID string, rv *model.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Touching the campground row first holds its lock until commit, so
	// concurrent appends to one campground read MAX(position) in turn.
	if _, err := tx.ExecContext(ctx,
		"UPDATE campgrounds SET updated_at = updated_at WHERE id = ?", campgroundID); err != nil {
		return err
	}
	if err := campgroundExists(ctx, tx, campgroundID); err != nil {
		return err
	}

	id := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Second)
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO reviews (id, body, rating, created_at) VALUES (?, ?, ?, ?)",
		id, rv.Body, rv.Rating, now); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	var last int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), 0) FROM campground_reviews WHERE campground_id = ?",
		campgroundID).Scan(&last); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO campground_reviews (campground_id, review_id, position) VALUES (?, ?, ?)",
		campgroundID, id, last+1); err != nil {
		return fmt.Errorf("append review reference: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	rv.ID = id
	rv.CreatedAt = now
	return nil
}

// RemoveFromCampground detaches the reference and deletes the review.  A
// reference whose review is already gone is still detached; only a review
// the campground does not reference yields ErrReviewNotFound.
func (r *SQLReviewRepo) RemoveFromCampground(ctx context.Context, campgroundID, reviewID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := campgroundExists(ctx, tx, campgroundID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"DELETE FROM campground_reviews WHERE campground_id = ? AND review_id = ?",
		campgroundID, reviewID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReviewNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", reviewID); err != nil {
		return err
	}
	return tx.Commit()
}
