package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/fishcamp/internal/model"
)

type reviewDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Body      string             `bson:"body"`
	Rating    int                `bson:"rating"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d *reviewDoc) toModel() *model.Review {
	return &model.Review{ID: d.ID.Hex(), Body: d.Body, Rating: d.Rating, CreatedAt: d.CreatedAt}
}

// MongoReviewRepo stores reviews in their own collection.  A standalone
// MongoDB server has no multi-document transactions, so the two-step
// operations are ordered such that an interruption can only leave an
// unreferenced review behind, and a failed second step is compensated.
type MongoReviewRepo struct {
	reviews     *mongo.Collection
	campgrounds *mongo.Collection
}

func NewMongoReviewRepo(db *mongo.Database) *MongoReviewRepo {
	return &MongoReviewRepo{
		reviews:     db.Collection(ReviewCollection),
		campgrounds: db.Collection(CampgroundCollection),
	}
}

func (r *MongoReviewRepo) GetByID(ctx context.Context, id string) (*model.Review, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReviewNotFound
	}
	var doc reviewDoc
	if err := r.reviews.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoReviewRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.Review, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []*model.Review{}, nil
	}
	cur, err := r.reviews.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	var docs []reviewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	found := make(map[string]*model.Review, len(docs))
	for i := range docs {
		found[docs[i].ID.Hex()] = docs[i].toModel()
	}
	return orderByIDs(ids, found), nil
}

// AddToCampground inserts the review, then pushes its id onto the
// campground.  If the push fails or the campground is gone, the review is
// deleted again.
func (r *MongoReviewRepo) AddToCampground(ctx context.Context, campgroundID string, rv *model.Review) error {
	cid, err := primitive.ObjectIDFromHex(campgroundID)
	if err != nil {
		return ErrCampgroundNotFound
	}
	doc := reviewDoc{
		ID:        primitive.NewObjectID(),
		Body:      rv.Body,
		Rating:    rv.Rating,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.reviews.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	res, err := r.campgrounds.UpdateOne(ctx, bson.M{"_id": cid}, bson.M{"$push": bson.M{"reviews": doc.ID}})
	if err != nil || res.MatchedCount == 0 {
		// Compensate on a fresh context: ctx may be what just failed.
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = r.reviews.DeleteOne(cctx, bson.M{"_id": doc.ID})
		if err != nil {
			return fmt.Errorf("append review reference: %w", err)
		}
		return ErrCampgroundNotFound
	}
	rv.ID = doc.ID.Hex()
	rv.CreatedAt = doc.CreatedAt
	return nil
}

// RemoveFromCampground pulls the reference first, then deletes the review.
// A reference whose review is already gone is still pulled; only a review
// the campground does not reference yields ErrReviewNotFound.
func (r *MongoReviewRepo) RemoveFromCampground(ctx context.Context, campgroundID, reviewID string) error {
	cid, err := primitive.ObjectIDFromHex(campgroundID)
	if err != nil {
		return ErrCampgroundNotFound
	}
	rid, err := primitive.ObjectIDFromHex(reviewID)
	if err != nil {
		return ErrReviewNotFound
	}
	res, err := r.campgrounds.UpdateOne(ctx, bson.M{"_id": cid}, bson.M{"$pull": bson.M{"reviews": rid}})
	if err != nil {
		return fmt.Errorf("detach review reference: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCampgroundNotFound
	}
	if res.ModifiedCount == 0 {
		return ErrReviewNotFound
	}
	if _, err := r.reviews.DeleteOne(ctx, bson.M{"_id": rid}); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}
