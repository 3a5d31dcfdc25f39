package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/fishcamp/internal/model"
)

// runStoreContract exercises the behaviour both backends must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) *Store) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := newStore(t)
		c := &model.Campground{Title: "Lake View", Location: "Tahoe, CA", Price: 12.5}
		if err := s.Campgrounds.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if c.ID == "" || c.CreatedAt.IsZero() {
			t.Fatalf("Create did not populate id/timestamps: %+v", c)
		}
		got, err := s.Campgrounds.GetByID(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Title != "Lake View" || got.Location != "Tahoe, CA" || got.Price != 12.5 {
			t.Fatalf("unexpected campground: %+v", got)
		}
		if len(got.ReviewIDs) != 0 {
			t.Fatalf("new campground has references: %v", got.ReviewIDs)
		}

		other := &model.Campground{Title: "Lake View"}
		if err := s.Campgrounds.Create(ctx, other); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if other.ID == c.ID {
			t.Fatal("ids must be unique")
		}
	})

	t.Run("missing and malformed ids", func(t *testing.T) {
		s := newStore(t)
		for _, id := range []string{"does-not-exist", "000000000000000000000000"} {
			if _, err := s.Campgrounds.GetByID(ctx, id); !errors.Is(err, ErrCampgroundNotFound) {
				t.Fatalf("GetByID(%q) err = %v", id, err)
			}
			if err := s.Campgrounds.Delete(ctx, id); !errors.Is(err, ErrCampgroundNotFound) {
				t.Fatalf("Delete(%q) err = %v", id, err)
			}
			if err := s.Campgrounds.Update(ctx, &model.Campground{ID: id, Title: "x"}); !errors.Is(err, ErrCampgroundNotFound) {
				t.Fatalf("Update(%q) err = %v", id, err)
			}
			if _, err := s.Reviews.GetByID(ctx, id); !errors.Is(err, ErrReviewNotFound) {
				t.Fatalf("Reviews.GetByID(%q) err = %v", id, err)
			}
			if err := s.Reviews.AddToCampground(ctx, id, &model.Review{Body: "b", Rating: 3}); !errors.Is(err, ErrCampgroundNotFound) {
				t.Fatalf("AddToCampground(%q) err = %v", id, err)
			}
		}
	})

	t.Run("update keeps references", func(t *testing.T) {
		s := newStore(t)
		c := &model.Campground{Title: "Old"}
		mustCreate(t, s, c)
		rv := &model.Review{Body: "nice", Rating: 4}
		if err := s.Reviews.AddToCampground(ctx, c.ID, rv); err != nil {
			t.Fatalf("AddToCampground: %v", err)
		}

		c.Title = "New"
		c.Description = "updated"
		if err := s.Campgrounds.Update(ctx, c); err != nil {
			t.Fatalf("Update: %v", err)
		}
		// Same values again must not look like a missing row.
		if err := s.Campgrounds.Update(ctx, c); err != nil {
			t.Fatalf("idempotent Update: %v", err)
		}
		got, err := s.Campgrounds.GetByID(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Title != "New" || got.Description != "updated" {
			t.Fatalf("fields not updated: %+v", got)
		}
		if len(got.ReviewIDs) != 1 || got.ReviewIDs[0] != rv.ID {
			t.Fatalf("references lost on update: %v", got.ReviewIDs)
		}
	})

	t.Run("add reviews keeps order", func(t *testing.T) {
		s := newStore(t)
		c := &model.Campground{Title: "Pines"}
		mustCreate(t, s, c)

		var ids []string
		for _, body := range []string{"first", "second", "third"} {
			rv := &model.Review{Body: body, Rating: 5}
			if err := s.Reviews.AddToCampground(ctx, c.ID, rv); err != nil {
				t.Fatalf("AddToCampground: %v", err)
			}
			if rv.ID == "" {
				t.Fatal("review id not populated")
			}
			ids = append(ids, rv.ID)
		}

		got, err := s.Campgrounds.GetByID(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if len(got.ReviewIDs) != 3 {
			t.Fatalf("want 3 references, got %v", got.ReviewIDs)
		}
		for i := range ids {
			if got.ReviewIDs[i] != ids[i] {
				t.Fatalf("reference %d = %s, want %s", i, got.ReviewIDs[i], ids[i])
			}
		}

		reviews, err := s.Reviews.ListByIDs(ctx, got.ReviewIDs)
		if err != nil {
			t.Fatalf("ListByIDs: %v", err)
		}
		if len(reviews) != 3 || reviews[0].Body != "first" || reviews[2].Body != "third" {
			t.Fatalf("unexpected resolved reviews: %+v", reviews)
		}
	})

	t.Run("remove review", func(t *testing.T) {
		s := newStore(t)
		c := &model.Campground{Title: "Dunes"}
		mustCreate(t, s, c)
		keep := &model.Review{Body: "keep", Rating: 2}
		drop := &model.Review{Body: "drop", Rating: 1}
		for _, rv := range []*model.Review{keep, drop} {
			if err := s.Reviews.AddToCampground(ctx, c.ID, rv); err != nil {
				t.Fatalf("AddToCampground: %v", err)
			}
		}

		if err := s.Reviews.RemoveFromCampground(ctx, c.ID, drop.ID); err != nil {
			t.Fatalf("RemoveFromCampground: %v", err)
		}
		got, err := s.Campgrounds.GetByID(ctx, c.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.HasReview(drop.ID) || !got.HasReview(keep.ID) {
			t.Fatalf("unexpected references after removal: %v", got.ReviewIDs)
		}
		if _, err := s.Reviews.GetByID(ctx, drop.ID); !errors.Is(err, ErrReviewNotFound) {
			t.Fatalf("deleted review still resolves: %v", err)
		}
		if err := s.Reviews.RemoveFromCampground(ctx, c.ID, drop.ID); !errors.Is(err, ErrReviewNotFound) {
			t.Fatalf("second removal err = %v", err)
		}
	})

	t.Run("delete campground leaves reviews", func(t *testing.T) {
		s := newStore(t)
		c := &model.Campground{Title: "Gone"}
		mustCreate(t, s, c)
		stay := &model.Campground{Title: "Stays"}
		mustCreate(t, s, stay)
		rv := &model.Review{Body: "orphan", Rating: 3}
		if err := s.Reviews.AddToCampground(ctx, c.ID, rv); err != nil {
			t.Fatalf("AddToCampground: %v", err)
		}

		if err := s.Campgrounds.Delete(ctx, c.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		list, err := s.Campgrounds.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 1 || list[0].ID != stay.ID {
			t.Fatalf("unexpected listing after delete: %+v", list)
		}
		// Current behaviour: no cascade.
		if _, err := s.Reviews.GetByID(ctx, rv.ID); err != nil {
			t.Fatalf("review of deleted campground should remain: %v", err)
		}
	})

	t.Run("dangling references are skipped", func(t *testing.T) {
		s := newStore(t)
		c := &model.Campground{Title: "Ridge"}
		mustCreate(t, s, c)
		rv := &model.Review{Body: "real", Rating: 5}
		if err := s.Reviews.AddToCampground(ctx, c.ID, rv); err != nil {
			t.Fatalf("AddToCampground: %v", err)
		}
		ids := []string{"ffffffffffffffffffffffff", rv.ID, "not-an-id"}
		got, err := s.Reviews.ListByIDs(ctx, ids)
		if err != nil {
			t.Fatalf("ListByIDs: %v", err)
		}
		if len(got) != 1 || got[0].ID != rv.ID {
			t.Fatalf("want only the real review, got %+v", got)
		}
		empty, err := s.Reviews.ListByIDs(ctx, nil)
		if err != nil || len(empty) != 0 {
			t.Fatalf("ListByIDs(nil) = %v, %v", empty, err)
		}
	})

	t.Run("list attaches references", func(t *testing.T) {
		s := newStore(t)
		a := &model.Campground{Title: "A"}
		b := &model.Campground{Title: "B"}
		mustCreate(t, s, a)
		mustCreate(t, s, b)
		rv := &model.Review{Body: "on b", Rating: 4}
		if err := s.Reviews.AddToCampground(ctx, b.ID, rv); err != nil {
			t.Fatalf("AddToCampground: %v", err)
		}
		list, err := s.Campgrounds.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("want 2 campgrounds, got %d", len(list))
		}
		for _, c := range list {
			switch c.ID {
			case a.ID:
				if len(c.ReviewIDs) != 0 {
					t.Fatalf("A has references: %v", c.ReviewIDs)
				}
			case b.ID:
				if len(c.ReviewIDs) != 1 || c.ReviewIDs[0] != rv.ID {
					t.Fatalf("B references = %v", c.ReviewIDs)
				}
			default:
				t.Fatalf("unexpected campground %s", c.ID)
			}
		}
	})

	t.Run("ping and close", func(t *testing.T) {
		s := newStore(t)
		if err := s.Ping(ctx); err != nil {
			t.Fatalf("Ping: %v", err)
		}
	})
}

func mustCreate(t *testing.T, s *Store, c *model.Campground) {
	t.Helper()
	if err := s.Campgrounds.Create(context.Background(), c); err != nil {
		t.Fatalf("Create %q: %v", c.Title, err)
	}
}
