// internal/app/store/attendance/attendancestore.go
package attendancestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/tutorhub/internal/app/system/inputval"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("attendance record not found")
	ErrMalformed = errors.New("malformed attendance record")
	// ErrDuplicate means a record already exists for (student, date, time).
	ErrDuplicate = errors.New("attendance record already exists for this slot")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("attendance")}
}

func valid(r models.AttendanceRecord) (models.AttendanceRecord, error) {
	if err := inputval.Validate(r).Err(); err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("%w %s: %v", ErrMalformed, r.ID.Hex(), err)
	}
	return r, nil
}

func (s *Store) all(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.AttendanceRecord, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var raw []models.AttendanceRecord
	if err := cur.All(ctx, &raw); err != nil {
		return nil, err
	}
	out := make([]models.AttendanceRecord, 0, len(raw))
	for _, r := range raw {
		v, err := valid(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Find returns the record for one slot or ErrNotFound.
func (s *Store) Find(ctx context.Context, studentID primitive.ObjectID, date, tm string) (models.AttendanceRecord, error) {
	var r models.AttendanceRecord
	err := s.c.FindOne(ctx, bson.M{"student_id": studentID, "date": date, "time": tm}).Decode(&r)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.AttendanceRecord{}, ErrNotFound
		}
		return models.AttendanceRecord{}, err
	}
	return valid(r)
}

// Create inserts a new slot record. The unique (student_id, date, time)
// index turns a concurrent second insert into ErrDuplicate.
func (s *Store) Create(ctx context.Context, r models.AttendanceRecord) (models.AttendanceRecord, error) {
	r.ID = primitive.NewObjectID()
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = nil
	if _, err := valid(r); err != nil {
		return models.AttendanceRecord{}, err
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.AttendanceRecord{}, ErrDuplicate
		}
		return models.AttendanceRecord{}, err
	}
	return r, nil
}

// SetState overwrites the present/paid flags of an existing record.
func (s *Store) SetState(ctx context.Context, id primitive.ObjectID, present, paid bool) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"present":    present,
		"paid":       paid,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByGroupRange returns a group's records with from <= date <= to,
// ordered by date, time, then student.
func (s *Store) ListByGroupRange(ctx context.Context, groupID primitive.ObjectID, from, to string) ([]models.AttendanceRecord, error) {
	filter := bson.M{
		"group_id": groupID,
		"date":     bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "time", Value: 1},
		{Key: "student_id", Value: 1},
	})
	return s.all(ctx, filter, opts)
}

// ListByStudent returns every record of a student, oldest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.AttendanceRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})
	return s.all(ctx, bson.M{"student_id": studentID}, opts)
}
