package repository

import (
	"context"

	"github.com/iliyamo/fishcamp/internal/model"
)

// CampgroundRepository persists campgrounds together with their ordered
// review reference lists.
type CampgroundRepository interface {
	List(ctx context.Context) ([]*model.Campground, error)
	GetByID(ctx context.Context, id string) (*model.Campground, error)
	Create(ctx context.Context, c *model.Campground) error
	Update(ctx context.Context, c *model.Campground) error
	Delete(ctx context.Context, id string) error
}

// ReviewRepository persists reviews.  AddToCampground and
// RemoveFromCampground touch both the review and the owning campground's
// reference list and are treated as one unit by each backend.
type ReviewRepository interface {
	GetByID(ctx context.Context, id string) (*model.Review, error)
	// ListByIDs resolves references in the given order.  Ids that no longer
	// resolve are skipped, never reported as errors.
	ListByIDs(ctx context.Context, ids []string) ([]*model.Review, error)
	AddToCampground(ctx context.Context, campgroundID string, r *model.Review) error
	RemoveFromCampground(ctx context.Context, campgroundID, reviewID string) error
}

// Store is the persistence handle injected into the HTTP layer.  It is
// opened in main and closed on shutdown.
type Store struct {
	Campgrounds CampgroundRepository
	Reviews     ReviewRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping verifies the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the underlying connection.  It is safe to call once.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// orderByIDs returns the reviews in the order of ids, dropping ids that
// were not found.
func orderByIDs(ids []string, found map[string]*model.Review) []*model.Review {
	out := make([]*model.Review, 0, len(ids))
	for _, id := range ids {
		if r, ok := found[id]; ok {
			out = append(out, r)
		}
	}
	return out
}
