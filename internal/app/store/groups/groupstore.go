// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/tutorhub/internal/app/system/inputval"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound    = errors.New("group not found")
	ErrMalformed   = errors.New("malformed group document")
	ErrDuplicateID = errors.New("a group with this id already exists")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func decodeValid(g models.Group) (models.Group, error) {
	if err := inputval.Validate(g).Err(); err != nil {
		return models.Group{}, fmt.Errorf("%w %s: %v", ErrMalformed, g.ID.Hex(), err)
	}
	return g, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Group{}, ErrNotFound
		}
		return models.Group{}, err
	}
	return decodeValid(g)
}

// List returns every live group ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var raw []models.Group
	if err := cur.All(ctx, &raw); err != nil {
		return nil, err
	}
	out := make([]models.Group, 0, len(raw))
	for _, g := range raw {
		v, err := decodeValid(g)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Create inserts g. A zero ID is assigned; a non-zero ID is kept, which is
// how an archived group is restored under its original id.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	g.NameCI = text.Fold(g.Name)
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now
	if _, err := decodeValid(g); err != nil {
		return models.Group{}, err
	}
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateID
		}
		return models.Group{}, err
	}
	return g, nil
}

// Update replaces the editable fields of a live group.
func (s *Store) Update(ctx context.Context, g models.Group) error {
	if _, err := decodeValid(g); err != nil {
		return err
	}
	set := bson.M{
		"name":            g.Name,
		"name_ci":         text.Fold(g.Name),
		"fee_per_session": g.FeePerSession,
		// Description can be cleared (set to empty)
		"description": g.Description,
		"schedule":    g.Schedule,
		"updated_at":  time.Now().UTC(),
	}
	res, err := s.c.UpdateByID(ctx, g.ID, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a group by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
