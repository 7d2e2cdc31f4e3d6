package archive

import (
	"context"

	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the archived_groups collection backend.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("archived_groups")}
}

func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.ArchivedGroup, error) {
	var a models.ArchivedGroup
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.ArchivedGroup{}, ErrNotFound
		}
		return models.ArchivedGroup{}, err
	}
	if err := check(a); err != nil {
		return models.ArchivedGroup{}, err
	}
	return a, nil
}

func (s *Store) Put(ctx context.Context, a models.ArchivedGroup) error {
	if err := check(a); err != nil {
		return err
	}
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": a.ID}, a, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) List(ctx context.Context) ([]models.ArchivedGroup, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ArchivedGroup
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for _, a := range out {
		if err := check(a); err != nil {
			return nil, err
		}
	}
	sortByDeleted(out)
	return out, nil
}
