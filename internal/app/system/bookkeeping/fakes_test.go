package bookkeeping

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	archivestore "github.com/dalemusser/tutorhub/internal/app/store/archive"
	attendancestore "github.com/dalemusser/tutorhub/internal/app/store/attendance"
	groupstore "github.com/dalemusser/tutorhub/internal/app/store/groups"
	studentstore "github.com/dalemusser/tutorhub/internal/app/store/students"
	"github.com/dalemusser/tutorhub/internal/app/system/metrics"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"
)

// In-memory stores with injectable failures.

type fakeStudents struct {
	mu         sync.Mutex
	m          map[primitive.ObjectID]models.Student
	balanceErr error
}

func (f *fakeStudents) GetByID(_ context.Context, id primitive.ObjectID) (models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.m[id]
	if !ok {
		return models.Student{}, studentstore.ErrNotFound
	}
	return s, nil
}

func (f *fakeStudents) List(_ context.Context, groupID *primitive.ObjectID) ([]models.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Student
	for _, s := range f.m {
		if groupID == nil || s.GroupID == *groupID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStudents) SetBalance(_ context.Context, id primitive.ObjectID, lessons int, montant float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return f.balanceErr
	}
	s, ok := f.m[id]
	if !ok {
		return studentstore.ErrNotFound
	}
	s.LessonsAttended, s.Montant = lessons, montant
	f.m[id] = s
	return nil
}

type fakeGroups struct {
	m map[primitive.ObjectID]models.Group
}

func (f *fakeGroups) GetByID(_ context.Context, id primitive.ObjectID) (models.Group, error) {
	g, ok := f.m[id]
	if !ok {
		return models.Group{}, groupstore.ErrNotFound
	}
	return g, nil
}

func (f *fakeGroups) Create(_ context.Context, g models.Group) (models.Group, error) {
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	if _, dup := f.m[g.ID]; dup {
		return models.Group{}, groupstore.ErrDuplicateID
	}
	f.m[g.ID] = g
	return g, nil
}

func (f *fakeGroups) Update(_ context.Context, g models.Group) error {
	if _, ok := f.m[g.ID]; !ok {
		return groupstore.ErrNotFound
	}
	f.m[g.ID] = g
	return nil
}

func (f *fakeGroups) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	if _, ok := f.m[id]; !ok {
		return 0, nil
	}
	delete(f.m, id)
	return 1, nil
}

type fakeAttendance struct {
	m         map[string]models.AttendanceRecord
	createErr error
}

func slotID(student primitive.ObjectID, date, tm string) string {
	return student.Hex() + "|" + date + "|" + tm
}

func (f *fakeAttendance) Find(_ context.Context, student primitive.ObjectID, date, tm string) (models.AttendanceRecord, error) {
	r, ok := f.m[slotID(student, date, tm)]
	if !ok {
		return models.AttendanceRecord{}, attendancestore.ErrNotFound
	}
	return r, nil
}

func (f *fakeAttendance) Create(_ context.Context, r models.AttendanceRecord) (models.AttendanceRecord, error) {
	if f.createErr != nil {
		return models.AttendanceRecord{}, f.createErr
	}
	k := slotID(r.StudentID, r.Date, r.Time)
	if _, dup := f.m[k]; dup {
		return models.AttendanceRecord{}, attendancestore.ErrDuplicate
	}
	r.ID = primitive.NewObjectID()
	f.m[k] = r
	return r, nil
}

func (f *fakeAttendance) SetState(_ context.Context, id primitive.ObjectID, present, paid bool) error {
	for k, r := range f.m {
		if r.ID == id {
			r.Present, r.Paid = present, paid
			f.m[k] = r
			return nil
		}
	}
	return attendancestore.ErrNotFound
}

func (f *fakeAttendance) ListByStudent(_ context.Context, student primitive.ObjectID) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, r := range f.m {
		if r.StudentID == student {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakePayments struct {
	entries   []models.PaymentHistoryEntry
	appendErr error
}

func (f *fakePayments) Append(_ context.Context, e models.PaymentHistoryEntry) (models.PaymentHistoryEntry, error) {
	if f.appendErr != nil {
		return models.PaymentHistoryEntry{}, f.appendErr
	}
	e.ID = primitive.NewObjectID()
	f.entries = append(f.entries, e)
	return e, nil
}

// harness wires a Service over the fakes and a file-backed archive.
type harness struct {
	svc        *Service
	students   *fakeStudents
	groups     *fakeGroups
	attendance *fakeAttendance
	payments   *fakePayments
	archive    archivestore.Cache
	metrics    *metrics.Metrics
	now        time.Time
}

func newHarness(t *testing.T, recordReversals bool) *harness {
	t.Helper()
	h := &harness{
		students:   &fakeStudents{m: map[primitive.ObjectID]models.Student{}},
		groups:     &fakeGroups{m: map[primitive.ObjectID]models.Group{}},
		attendance: &fakeAttendance{m: map[string]models.AttendanceRecord{}},
		payments:   &fakePayments{},
		archive:    archivestore.NewFileCache(filepath.Join(t.TempDir(), "archive.json")),
		metrics:    metrics.New(),
		now:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	n := 0
	h.svc = New(Deps{
		Students:   h.students,
		Groups:     h.groups,
		Attendance: h.attendance,
		Payments:   h.payments,
		Archive:    h.archive,
	}, Options{
		RecordReversals: recordReversals,
		Metrics:         h.metrics,
		Now:             func() time.Time { return h.now },
		NewOpID: func() string {
			n++
			return fmt.Sprintf("op-%d", n)
		},
	}, zaptest.NewLogger(t))
	return h
}

func (h *harness) addGroup(name string, fee float64) models.Group {
	g := models.Group{
		ID:            primitive.NewObjectID(),
		Name:          name,
		FeePerSession: fee,
		Schedule:      []models.ScheduleEntry{{Day: models.Monday, Time: "10:00"}},
		CreatedAt:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	h.groups.m[g.ID] = g
	return g
}

func (h *harness) addStudent(group primitive.ObjectID) models.Student {
	s := models.Student{
		ID:                 primitive.NewObjectID(),
		FirstName:          "Yasmine",
		LastName:           "Benali",
		DateOfRegistration: "2025-01-06",
		GroupID:            group,
	}
	h.students.m[s.ID] = s
	return s
}

func (h *harness) student(t *testing.T, id primitive.ObjectID) models.Student {
	t.Helper()
	s, ok := h.students.m[id]
	if !ok {
		t.Fatalf("student %s missing", id.Hex())
	}
	return s
}

func (h *harness) record(t *testing.T, k SlotKey) models.AttendanceRecord {
	t.Helper()
	r, ok := h.attendance.m[slotID(k.StudentID, k.Date, k.Time)]
	if !ok {
		t.Fatalf("no attendance record for %s %s", k.Date, k.Time)
	}
	return r
}

// failingCache reads through to the wrapped cache and refuses writes.
type failingCache struct {
	archivestore.Cache
}

func (failingCache) Put(context.Context, models.ArchivedGroup) error {
	return errors.New("disk full")
}
