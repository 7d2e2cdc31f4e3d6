package bookkeeping

import (
	"context"
	"fmt"

	"github.com/dalemusser/tutorhub/internal/app/system/metrics"
	"github.com/dalemusser/tutorhub/internal/domain/ledger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReconcileResult compares a student's stored counters with the ones
// recomputed from attendance.
type ReconcileResult struct {
	StudentID primitive.ObjectID `json:"studentId"`
	Stored    ledger.Balance     `json:"stored"`
	Expected  ledger.Balance     `json:"expected"`
	Drift     bool               `json:"drift"`
	Applied   bool               `json:"applied"`
}

// Reconcile recomputes a student's balance from their attendance records,
// pricing each unpaid present session with FeeForDate. With apply set and
// drift found, the stored counters are overwritten.
func (s *Service) Reconcile(ctx context.Context, studentID primitive.ObjectID, apply bool) (ReconcileResult, error) {
	st, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return ReconcileResult{}, err
	}
	return s.reconcile(ctx, s.newFeeCache(ctx), st.ID, ledger.BalanceOf(st), apply)
}

func (s *Service) reconcile(ctx context.Context, fees *feeCache, id primitive.ObjectID, stored ledger.Balance, apply bool) (ReconcileResult, error) {
	recs, err := s.Attendance.ListByStudent(ctx, id)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("list attendance: %w", err)
	}
	expected := ledger.Expected(recs, fees.fee)
	if fees.err != nil {
		return ReconcileResult{}, fmt.Errorf("resolve fees: %w", fees.err)
	}

	res := ReconcileResult{
		StudentID: id,
		Stored:    stored,
		Expected:  expected,
		Drift:     ledger.Drift(stored, expected),
	}
	if !res.Drift {
		return res, nil
	}

	log := s.log.With(zap.String("student_id", id.Hex()))
	log.Warn("student balance drift",
		zap.Int("stored_lessons", stored.LessonsAttended),
		zap.Float64("stored_montant", stored.Montant),
		zap.Int("expected_lessons", expected.LessonsAttended),
		zap.Float64("expected_montant", expected.Montant))
	if !apply {
		return res, nil
	}

	if err := s.Students.SetBalance(ctx, id, expected.LessonsAttended, expected.Montant); err != nil {
		s.count(OpReconcile, metrics.OutcomeFailed)
		return res, fmt.Errorf("set balance: %w", err)
	}
	res.Applied = true
	s.count(OpReconcile, metrics.OutcomeApplied)
	log.Info("student balance reconciled")
	return res, nil
}

// DriftReport is the outcome of checking every student.
type DriftReport struct {
	Checked int               `json:"checked"`
	Drifted []ReconcileResult `json:"drifted"`
}

// CheckAll reconciles every student without writing and reports the ones
// whose stored balance differs from their attendance.
func (s *Service) CheckAll(ctx context.Context) (DriftReport, error) {
	students, err := s.Students.List(ctx, nil)
	if err != nil {
		return DriftReport{}, fmt.Errorf("list students: %w", err)
	}
	fees := s.newFeeCache(ctx)
	rep := DriftReport{Drifted: []ReconcileResult{}}
	for _, st := range students {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		res, err := s.reconcile(ctx, fees, st.ID, ledger.BalanceOf(st), false)
		if err != nil {
			return rep, err
		}
		rep.Checked++
		if res.Drift {
			rep.Drifted = append(rep.Drifted, res)
		}
	}
	return rep, nil
}
