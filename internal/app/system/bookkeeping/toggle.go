package bookkeeping

import (
	"context"
	"errors"

	attendancestore "github.com/dalemusser/tutorhub/internal/app/store/attendance"
	"github.com/dalemusser/tutorhub/internal/app/system/inputval"
	"github.com/dalemusser/tutorhub/internal/app/system/metrics"
	"github.com/dalemusser/tutorhub/internal/domain/ledger"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Operation names used in logs and metrics.
const (
	OpPresence  = "presence"
	OpPaid      = "paid"
	OpArchive   = "archive_group"
	OpFeeChange = "fee_change"
	OpRestore   = "restore_group"
	OpReconcile = "reconcile"
)

// SlotKey identifies one attendance slot.
type SlotKey struct {
	StudentID primitive.ObjectID `json:"studentId" validate:"required" label:"Student"`
	GroupID   primitive.ObjectID `json:"groupId" validate:"required" label:"Group"`
	Date      string             `json:"date" validate:"required,ymd" label:"Date"`
	Time      string             `json:"time" validate:"required,hhmm" label:"Time"`
}

// Result is the state after a toggle.
type Result struct {
	OpID      string                      `json:"opId"`
	Record    models.AttendanceRecord     `json:"record"`
	Fee       float64                     `json:"fee"`
	FeeSource ledger.FeeSource            `json:"feeSource"`
	Balance   ledger.Balance              `json:"balance"`
	Payment   *models.PaymentHistoryEntry `json:"payment,omitempty"`
}

// SetPresence toggles whether the student attended the slot.
func (s *Service) SetPresence(ctx context.Context, k SlotKey) (Result, error) {
	return s.toggle(ctx, OpPresence, k, func(cur ledger.Slot, fee float64) (ledger.Transition, error) {
		return ledger.TogglePresence(cur, fee)
	})
}

// SetPaid toggles whether the student paid for the slot.
func (s *Service) SetPaid(ctx context.Context, k SlotKey) (Result, error) {
	return s.toggle(ctx, OpPaid, k, func(cur ledger.Slot, fee float64) (ledger.Transition, error) {
		return ledger.TogglePaid(cur, fee, s.opts.RecordReversals)
	})
}

type transitionFunc func(cur ledger.Slot, fee float64) (ledger.Transition, error)

func (s *Service) toggle(ctx context.Context, op string, k SlotKey, next transitionFunc) (Result, error) {
	if err := inputval.Validate(k).Err(); err != nil {
		s.count(op, metrics.OutcomeInvalid)
		return Result{}, err
	}

	// Everything is read before the first write so that a missing student
	// or a refused transition leaves the store untouched.
	rec, err := s.loadRecord(ctx, k)
	if err != nil {
		return Result{}, err
	}
	student, err := s.loadStudent(ctx, k.StudentID)
	if err != nil {
		return Result{}, err
	}
	quote, err := s.FeeForDate(ctx, k.GroupID, k.Date)
	if err != nil {
		return Result{}, err
	}

	t, err := next(ledger.SlotOf(rec), quote.Fee)
	if err != nil {
		s.count(op, metrics.OutcomeBlocked)
		s.log.Info("ledger transition refused",
			zap.String("op", op),
			zap.String("student_id", k.StudentID.Hex()),
			zap.String("date", k.Date),
			zap.String("time", k.Time),
			zap.Error(err))
		return Result{}, err
	}

	r := s.begin(op,
		zap.String("student_id", k.StudentID.Hex()),
		zap.String("group_id", k.GroupID.Hex()),
		zap.String("date", k.Date),
		zap.String("time", k.Time))

	res := Result{OpID: r.id, Fee: quote.Fee, FeeSource: quote.Source, Balance: ledger.BalanceOf(student)}
	if rec != nil {
		res.Record = *rec
	}

	for _, e := range t.Effects {
		if err := s.apply(ctx, r, k, e, &res); err != nil {
			return res, err
		}
	}

	s.count(op, metrics.OutcomeApplied)
	r.log.Info("ledger transition applied",
		zap.Bool("present", t.After.Present),
		zap.Bool("paid", t.After.Paid),
		zap.Float64("fee", quote.Fee),
		zap.String("fee_source", string(quote.Source)),
		zap.Int("lessons_attended", res.Balance.LessonsAttended),
		zap.Float64("montant", res.Balance.Montant))
	return res, nil
}

func (s *Service) apply(ctx context.Context, r *run, k SlotKey, e ledger.Effect, res *Result) error {
	switch e.Kind {
	case ledger.CreateRecord:
		return r.step(string(e.Kind), func() error {
			created, err := s.Attendance.Create(ctx, models.AttendanceRecord{
				StudentID: k.StudentID,
				GroupID:   k.GroupID,
				Date:      k.Date,
				Time:      k.Time,
				Present:   e.Present,
				Paid:      e.Paid,
			})
			if errors.Is(err, attendancestore.ErrDuplicate) {
				return ErrSlotConflict
			}
			if err != nil {
				return err
			}
			res.Record = created
			return nil
		})

	case ledger.UpdateRecord:
		return r.step(string(e.Kind), func() error {
			if err := s.Attendance.SetState(ctx, res.Record.ID, e.Present, e.Paid); err != nil {
				return err
			}
			now := s.opts.Now()
			res.Record.Present, res.Record.Paid, res.Record.UpdatedAt = e.Present, e.Paid, &now
			return nil
		})

	case ledger.AdjustBalance:
		return r.step(string(e.Kind), func() error {
			next := res.Balance.Apply(e.LessonsDelta, e.MontantDelta)
			if err := s.Students.SetBalance(ctx, k.StudentID, next.LessonsAttended, next.Montant); err != nil {
				return err
			}
			res.Balance = next
			return nil
		})

	case ledger.AppendHistory:
		return r.step(string(e.Kind), func() error {
			entry, err := s.Payments.Append(ctx, models.PaymentHistoryEntry{
				StudentID:   k.StudentID,
				GroupID:     k.GroupID,
				SessionDate: k.Date,
				SessionTime: k.Time,
				Amount:      ledger.Float(e.Amount),
				Kind:        e.EntryKind,
				OpID:        r.id,
				PaidAt:      s.opts.Now(),
			})
			if err != nil {
				return err
			}
			res.Payment = &entry
			if s.opts.Metrics != nil && e.EntryKind == models.PaymentKindPayment {
				s.opts.Metrics.PaymentsRecorded.Inc()
			}
			return nil
		})
	}
	return nil
}
