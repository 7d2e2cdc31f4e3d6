// Package bookkeeping applies the attendance ledger rules against the
// stores.
//
// Each operation loads a snapshot, asks the pure ledger package for the
// transition, then performs the resulting effects one store call at a time.
// There is no transaction: if a later step fails, the earlier writes stay,
// the failure is logged with the operation id and failing step, and
// Reconcile can repair the student's balance afterwards.
package bookkeeping

import (
	"context"
	"errors"
	"fmt"
	"time"

	archivestore "github.com/dalemusser/tutorhub/internal/app/store/archive"
	attendancestore "github.com/dalemusser/tutorhub/internal/app/store/attendance"
	"github.com/dalemusser/tutorhub/internal/app/system/metrics"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrArchiveNotFound = errors.New("no archived record for this group")
	// ErrGroupLive is returned when restoring a group that currently exists.
	ErrGroupLive = errors.New("this group already exists")
	// ErrSlotConflict means another request created the slot record between
	// our read and our insert.
	ErrSlotConflict = errors.New("this session was changed by another request; reload and try again")
)

// StudentStore is the subset of the students store the ledger needs.
type StudentStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Student, error)
	List(ctx context.Context, groupID *primitive.ObjectID) ([]models.Student, error)
	SetBalance(ctx context.Context, id primitive.ObjectID, lessonsAttended int, montant float64) error
}

// GroupStore is the subset of the groups store the ledger needs.
type GroupStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
	Create(ctx context.Context, g models.Group) (models.Group, error)
	Update(ctx context.Context, g models.Group) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// AttendanceStore is the subset of the attendance store the ledger needs.
type AttendanceStore interface {
	Find(ctx context.Context, studentID primitive.ObjectID, date, tm string) (models.AttendanceRecord, error)
	Create(ctx context.Context, r models.AttendanceRecord) (models.AttendanceRecord, error)
	SetState(ctx context.Context, id primitive.ObjectID, present, paid bool) error
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.AttendanceRecord, error)
}

// PaymentStore appends payment history entries.
type PaymentStore interface {
	Append(ctx context.Context, e models.PaymentHistoryEntry) (models.PaymentHistoryEntry, error)
}

// Deps are the stores the service writes through.
type Deps struct {
	Students   StudentStore
	Groups     GroupStore
	Attendance AttendanceStore
	Payments   PaymentStore
	Archive    archivestore.Cache
}

// Options tune ledger behavior.
type Options struct {
	// RecordReversals appends a reversal entry when a paid session is
	// marked unpaid. Off by default: the payment entry simply stays.
	RecordReversals bool
	Metrics         *metrics.Metrics
	// Now and NewOpID are overridable for tests.
	Now     func() time.Time
	NewOpID func() string
}

// Service runs ledger operations.
type Service struct {
	Deps
	opts Options
	log  *zap.Logger
}

// New builds a Service. A nil logger is replaced by a no-op.
func New(deps Deps, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewOpID == nil {
		opts.NewOpID = func() string { return uuid.NewString() }
	}
	return &Service{Deps: deps, opts: opts, log: logger}
}

// StepError reports a store failure part way through an operation.
// Completed lists the steps that were written before the failure.
type StepError struct {
	Op        string
	OpID      string
	Step      string
	Completed []string
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s: step %s: %v", e.Op, e.OpID, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Partial reports whether any write happened before the failure.
func (e *StepError) Partial() bool { return len(e.Completed) > 0 }

// run tracks the steps of one multi-write operation.
type run struct {
	s    *Service
	op   string
	id   string
	log  *zap.Logger
	done []string
}

func (s *Service) begin(op string, fields ...zap.Field) *run {
	id := s.opts.NewOpID()
	return &run{
		s:   s,
		op:  op,
		id:  id,
		log: s.log.With(append([]zap.Field{zap.String("op", op), zap.String("op_id", id)}, fields...)...),
	}
}

// step runs fn and records it; on failure it logs, counts and wraps.
func (r *run) step(name string, fn func() error) error {
	if err := fn(); err != nil {
		r.log.Error("ledger step failed",
			zap.String("step", name),
			zap.Strings("completed", r.done),
			zap.Error(err))
		if m := r.s.opts.Metrics; m != nil {
			m.LedgerTransitions.WithLabelValues(r.op, metrics.OutcomeFailed).Inc()
			if len(r.done) > 0 {
				m.PartialFailures.WithLabelValues(r.op, name).Inc()
			}
		}
		return &StepError{Op: r.op, OpID: r.id, Step: name, Completed: append([]string(nil), r.done...), Err: err}
	}
	r.log.Debug("ledger step done", zap.String("step", name))
	r.done = append(r.done, name)
	return nil
}

func (s *Service) count(op, outcome string) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.LedgerTransitions.WithLabelValues(op, outcome).Inc()
	}
}

func (s *Service) loadStudent(ctx context.Context, id primitive.ObjectID) (models.Student, error) {
	st, err := s.Students.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, fmt.Errorf("load student: %w", err)
	}
	return st, nil
}

// loadRecord returns nil when the slot has never been toggled.
func (s *Service) loadRecord(ctx context.Context, k SlotKey) (*models.AttendanceRecord, error) {
	rec, err := s.Attendance.Find(ctx, k.StudentID, k.Date, k.Time)
	if err != nil {
		if errors.Is(err, attendancestore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load attendance: %w", err)
	}
	return &rec, nil
}
