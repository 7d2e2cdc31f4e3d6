package groupstore_test

import (
	"errors"
	"testing"

	groupstore "github.com/dalemusser/tutorhub/internal/app/store/groups"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"github.com/dalemusser/tutorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newGroup(name string, fee float64) models.Group {
	return models.Group{
		Name:          name,
		FeePerSession: fee,
		Schedule:      []models.ScheduleEntry{{Day: models.Monday, Time: "17:00"}},
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, newGroup("Maths 3e", 20))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Verify ID was assigned
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FeePerSession != 20 || len(got.Schedule) != 1 {
		t.Errorf("unexpected group: %+v", got)
	}
}

func TestStore_Create_RejectsInvalid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, newGroup("Free", 0))
	if !errors.Is(err, groupstore.ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestStore_Create_KeepsIDForRestore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := newGroup("Physique", 15)
	g.ID = primitive.NewObjectID()
	created, err := store.Create(ctx, g)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID != g.ID {
		t.Errorf("ID = %v, want %v", created.ID, g.ID)
	}

	if _, err := store.Create(ctx, g); !errors.Is(err, groupstore.ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, groupstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetByID_MalformedDocument(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := primitive.NewObjectID()
	if _, err := db.Collection("groups").InsertOne(ctx, bson.M{"_id": id, "name": "Broken", "fee_per_session": -5}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := store.GetByID(ctx, id); !errors.Is(err, groupstore.ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g, err := store.Create(ctx, newGroup("Anglais", 20))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	g.FeePerSession = 25
	g.Description = "Niveau B1"
	if err := store.Update(ctx, g); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ := store.GetByID(ctx, g.ID)
	if got.FeePerSession != 25 || got.Description != "Niveau B1" {
		t.Errorf("unexpected group after update: %+v", got)
	}

	g.ID = primitive.NewObjectID()
	if err := store.Update(ctx, g); !errors.Is(err, groupstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, _ := store.Create(ctx, newGroup("Biologie", 18))
	_, _ = store.Create(ctx, newGroup("anglais", 20))

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].Name != "anglais" {
		t.Fatalf("expected case-insensitive name order, got %+v", list)
	}

	n, err := store.Delete(ctx, b.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	list, _ = store.List(ctx)
	if len(list) != 1 {
		t.Errorf("expected 1 group after delete, got %d", len(list))
	}
}
