package studentstore_test

import (
	"errors"
	"testing"

	studentstore "github.com/dalemusser/tutorhub/internal/app/store/students"
	"github.com/dalemusser/tutorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func info(first, last string, group primitive.ObjectID) studentstore.Info {
	return studentstore.Info{
		FirstName:          first,
		LastName:           last,
		DateOfRegistration: "2025-01-06",
		GroupID:            group,
	}
}

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	group := primitive.NewObjectID()
	created, err := store.Create(ctx, info("Amel", "Benali", group))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.LessonsAttended != 0 || created.Montant != 0 {
		t.Errorf("expected zero balance, got %d / %v", created.LessonsAttended, created.Montant)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FullName() != "Amel Benali" || got.GroupID != group {
		t.Errorf("unexpected student: %+v", got)
	}
}

func TestStore_Create_RejectsBadDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := info("Amel", "Benali", primitive.NewObjectID())
	in.DateOfRegistration = "06/01/2025"
	if _, err := store.Create(ctx, in); !errors.Is(err, studentstore.ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestStore_ListByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g1, g2 := primitive.NewObjectID(), primitive.NewObjectID()
	_, _ = store.Create(ctx, info("Yanis", "Zerrouki", g1))
	_, _ = store.Create(ctx, info("Lina", "Amrani", g1))
	_, _ = store.Create(ctx, info("Sami", "Haddad", g2))

	all, err := store.List(ctx, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 students, got %d", len(all))
	}

	inG1, err := store.List(ctx, &g1)
	if err != nil {
		t.Fatalf("List(group) failed: %v", err)
	}
	if len(inG1) != 2 || inG1[0].LastName != "Amrani" {
		t.Errorf("expected 2 students sorted by last name, got %+v", inG1)
	}
}

func TestStore_SetBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st, _ := store.Create(ctx, info("Amel", "Benali", primitive.NewObjectID()))
	if err := store.SetBalance(ctx, st.ID, 3, 45.5); err != nil {
		t.Fatalf("SetBalance failed: %v", err)
	}
	got, _ := store.GetByID(ctx, st.ID)
	if got.LessonsAttended != 3 || got.Montant != 45.5 {
		t.Errorf("balance = %d / %v", got.LessonsAttended, got.Montant)
	}

	if err := store.SetBalance(ctx, st.ID, -1, 0); !errors.Is(err, studentstore.ErrMalformed) {
		t.Errorf("expected ErrMalformed for negative balance, got %v", err)
	}
	if err := store.SetBalance(ctx, primitive.NewObjectID(), 0, 0); !errors.Is(err, studentstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_UpdateInfoAndPaidFlag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st, _ := store.Create(ctx, info("Amel", "Benali", primitive.NewObjectID()))
	_ = store.SetBalance(ctx, st.ID, 2, 40)

	newGroup := primitive.NewObjectID()
	if err := store.UpdateInfo(ctx, st.ID, info("Amélie", "Benali", newGroup)); err != nil {
		t.Fatalf("UpdateInfo failed: %v", err)
	}
	if err := store.SetPaidFlag(ctx, st.ID, true); err != nil {
		t.Fatalf("SetPaidFlag failed: %v", err)
	}

	got, _ := store.GetByID(ctx, st.ID)
	if got.FirstName != "Amélie" || got.GroupID != newGroup || !got.Paid {
		t.Errorf("unexpected student: %+v", got)
	}
	if got.LessonsAttended != 2 || got.Montant != 40 {
		t.Errorf("admin edit must not touch balance: %d / %v", got.LessonsAttended, got.Montant)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st, _ := store.Create(ctx, info("Amel", "Benali", primitive.NewObjectID()))
	n, err := store.Delete(ctx, st.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	if _, err := store.GetByID(ctx, st.ID); !errors.Is(err, studentstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
