package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/tutorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateGroup inserts a group meeting on Mondays at 10:00.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, fee float64) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:            primitive.NewObjectID(),
		Name:          name,
		NameCI:        text.Fold(name),
		FeePerSession: fee,
		Schedule:      []models.ScheduleEntry{{Day: models.Monday, Time: "10:00"}},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("CreateGroup: %v", err)
	}
	return g
}

// CreateStudent inserts a student with a zero balance in groupID.
func (f *Fixtures) CreateStudent(ctx context.Context, first, last string, groupID primitive.ObjectID) models.Student {
	f.t.Helper()

	now := time.Now().UTC()
	s := models.Student{
		ID:                 primitive.NewObjectID(),
		FirstName:          first,
		FirstNameCI:        text.Fold(first),
		LastName:           last,
		LastNameCI:         text.Fold(last),
		DateOfRegistration: "2025-01-06",
		GroupID:            groupID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if _, err := f.db.Collection("students").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("CreateStudent: %v", err)
	}
	return s
}

// CreateAttendance inserts an attendance record as-is. It does not touch
// the student's balance.
func (f *Fixtures) CreateAttendance(ctx context.Context, studentID, groupID primitive.ObjectID, date, tm string, present, paid bool) models.AttendanceRecord {
	f.t.Helper()

	rec := models.AttendanceRecord{
		ID:        primitive.NewObjectID(),
		StudentID: studentID,
		GroupID:   groupID,
		Date:      date,
		Time:      tm,
		Present:   present,
		Paid:      paid,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("attendance").InsertOne(ctx, rec); err != nil {
		f.t.Fatalf("CreateAttendance: %v", err)
	}
	return rec
}
