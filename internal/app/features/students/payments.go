// internal/app/features/students/payments.go
package students

import (
	"errors"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	studentstore "github.com/dalemusser/tutorhub/internal/app/store/students"
	"github.com/dalemusser/tutorhub/internal/app/system/timeouts"
	"github.com/dalemusser/tutorhub/internal/domain/ledger"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ServePayments handles GET /students/{id}/payments: the payment history,
// newest first, and the net amount collected.
func (h *Handler) ServePayments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "student payments")
	defer cancel()

	if _, err := h.Students.GetByID(ctx, id); err != nil {
		if errors.Is(err, studentstore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, msgNotFound)
			return
		}
		h.ErrLog.LogServerError(w, r, "load student failed", err, zap.String("student_id", id.Hex()))
		return
	}

	entries, err := h.Payments.ListByStudent(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list payments failed", err, zap.String("student_id", id.Hex()))
		return
	}
	if entries == nil {
		entries = []models.PaymentHistoryEntry{}
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(ledger.Money(e.Signed()))
	}
	uierrors.WriteJSON(w, http.StatusOK, paymentsResponse{
		StudentID: id,
		Entries:   entries,
		TotalPaid: ledger.Float(total),
	})
}

// HandleReconcile handles POST /students/{id}/reconcile?apply=true|false.
// Without apply it only reports drift.
func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	apply := false
	if s := query.Get(r, "apply"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "apply must be true or false.", map[string]string{"apply": "apply must be true or false."})
			return
		}
		apply = v
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "reconcile student")
	defer cancel()

	res, err := h.Ledger.Reconcile(ctx, id, apply)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "reconcile failed", err, zap.String("student_id", id.Hex()))
		return
	}
	if res.Drift {
		h.Audit.BalanceReconciled(ctx, r, id, res.Drift, res.Applied)
	}
	uierrors.WriteJSON(w, http.StatusOK, res)
}
