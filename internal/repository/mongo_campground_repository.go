package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/fishcamp/internal/model"
)

// Collection names used by the Mongo backend.
const (
	CampgroundCollection = "campgrounds"
	ReviewCollection     = "reviews"
)

// campgroundDoc is the stored shape of a campground.  Reviews holds the
// ordered weak references.
type campgroundDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Title       string               `bson:"title"`
	Location    string               `bson:"location"`
	Price       float64              `bson:"price"`
	Description string               `bson:"description"`
	Image       string               `bson:"image"`
	Reviews     []primitive.ObjectID `bson:"reviews"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func (d *campgroundDoc) toModel() *model.Campground {
	ids := make([]string, 0, len(d.Reviews))
	for _, oid := range d.Reviews {
		ids = append(ids, oid.Hex())
	}
	return &model.Campground{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Location:    d.Location,
		Price:       d.Price,
		Description: d.Description,
		Image:       d.Image,
		ReviewIDs:   ids,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoCampgroundRepo stores campgrounds as documents.
type MongoCampgroundRepo struct {
	coll *mongo.Collection
}

func NewMongoCampgroundRepo(db *mongo.Database) *MongoCampgroundRepo {
	return &MongoCampgroundRepo{coll: db.Collection(CampgroundCollection)}
}

// NewMongoStore bundles the Mongo repositories behind a Store whose
// lifecycle owns client.
func NewMongoStore(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		Campgrounds: NewMongoCampgroundRepo(db),
		Reviews:     NewMongoReviewRepo(db),
		ping:        func(ctx context.Context) error { return client.Ping(ctx, nil) },
		close:       client.Disconnect,
	}
}

func (r *MongoCampgroundRepo) List(ctx context.Context) ([]*model.Campground, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find campgrounds: %w", err)
	}
	var docs []campgroundDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode campgrounds: %w", err)
	}
	out := make([]*model.Campground, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

// GetByID treats a malformed id the same as a missing one.
func (r *MongoCampgroundRepo) GetByID(ctx context.Context, id string) (*model.Campground, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCampgroundNotFound
	}
	var doc campgroundDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCampgroundNotFound
		}
		return nil, fmt.Errorf("find campground: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoCampgroundRepo) Create(ctx context.Context, c *model.Campground) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := campgroundDoc{
		ID:          primitive.NewObjectID(),
		Title:       c.Title,
		Location:    c.Location,
		Price:       c.Price,
		Description: c.Description,
		Image:       c.Image,
		Reviews:     []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert campground: %w", err)
	}
	c.ID = doc.ID.Hex()
	c.ReviewIDs = []string{}
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// Update sets the editable fields; the reviews array is left alone so a
// concurrent review submission is not lost.
func (r *MongoCampgroundRepo) Update(ctx context.Context, c *model.Campground) error {
	oid, err := primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		return ErrCampgroundNotFound
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":       c.Title,
		"location":    c.Location,
		"price":       c.Price,
		"description": c.Description,
		"image":       c.Image,
		"updated_at":  now,
	}})
	if err != nil {
		return fmt.Errorf("update campground: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCampgroundNotFound
	}
	c.UpdatedAt = now
	return nil
}

// Delete removes only the campground document; referenced reviews stay.
func (r *MongoCampgroundRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrCampgroundNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete campground: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrCampgroundNotFound
	}
	return nil
}
