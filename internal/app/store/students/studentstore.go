// internal/app/store/students/studentstore.go
package studentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/tutorhub/internal/app/system/inputval"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("student not found")
	ErrMalformed = errors.New("malformed student document")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("students")}
}

// Info is the part of a student the admin form edits.
type Info struct {
	FirstName          string
	LastName           string
	DateOfRegistration string
	GroupID            primitive.ObjectID
}

func valid(s models.Student) (models.Student, error) {
	if err := inputval.Validate(s).Err(); err != nil {
		return models.Student{}, fmt.Errorf("%w %s: %v", ErrMalformed, s.ID.Hex(), err)
	}
	return s, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Student, error) {
	var st models.Student
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&st); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Student{}, ErrNotFound
		}
		return models.Student{}, err
	}
	return valid(st)
}

// List returns students ordered by last then first name. A non-nil groupID
// restricts the result to that group.
func (s *Store) List(ctx context.Context, groupID *primitive.ObjectID) ([]models.Student, error) {
	filter := bson.M{}
	if groupID != nil {
		filter["group_id"] = *groupID
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "last_name_ci", Value: 1},
		{Key: "first_name_ci", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var raw []models.Student
	if err := cur.All(ctx, &raw); err != nil {
		return nil, err
	}
	out := make([]models.Student, 0, len(raw))
	for _, st := range raw {
		v, err := valid(st)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Create inserts a new student with a zero balance.
func (s *Store) Create(ctx context.Context, in Info) (models.Student, error) {
	now := time.Now().UTC()
	st := models.Student{
		ID:                 primitive.NewObjectID(),
		FirstName:          in.FirstName,
		FirstNameCI:        text.Fold(in.FirstName),
		LastName:           in.LastName,
		LastNameCI:         text.Fold(in.LastName),
		DateOfRegistration: in.DateOfRegistration,
		GroupID:            in.GroupID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if _, err := valid(st); err != nil {
		return models.Student{}, err
	}
	if _, err := s.c.InsertOne(ctx, st); err != nil {
		return models.Student{}, err
	}
	return st, nil
}

func (s *Store) update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateInfo applies an admin edit. Balances are left alone.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, in Info) error {
	return s.update(ctx, id, bson.M{
		"first_name":           in.FirstName,
		"first_name_ci":        text.Fold(in.FirstName),
		"last_name":            in.LastName,
		"last_name_ci":         text.Fold(in.LastName),
		"date_of_registration": in.DateOfRegistration,
		"group_id":             in.GroupID,
	})
}

// SetPaidFlag sets the coarse legacy paid flag.
func (s *Store) SetPaidFlag(ctx context.Context, id primitive.ObjectID, paid bool) error {
	return s.update(ctx, id, bson.M{"paid": paid})
}

// SetBalance writes the ledger-derived counters. Callers floor both at 0.
func (s *Store) SetBalance(ctx context.Context, id primitive.ObjectID, lessonsAttended int, montant float64) error {
	if lessonsAttended < 0 || montant < 0 {
		return fmt.Errorf("%w: negative balance (%d, %v)", ErrMalformed, lessonsAttended, montant)
	}
	return s.update(ctx, id, bson.M{
		"lessons_attended": lessonsAttended,
		"montant":          montant,
	})
}

// Delete removes a student. Attendance and payment history are kept.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
