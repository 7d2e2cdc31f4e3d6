// internal/app/features/students/viewedit.go
package students

import (
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	studentstore "github.com/dalemusser/tutorhub/internal/app/store/students"
	"github.com/dalemusser/tutorhub/internal/app/system/timeouts"
	"github.com/dalemusser/tutorhub/internal/domain/ledger"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgNotFound = "Student not found."

// studentID reads {id}; a malformed id is answered as not found.
func (h *Handler) studentID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.NotFound(w, r, msgNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

// ServeView handles GET /students/{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "view student")
	defer cancel()

	st, err := h.Students.GetByID(ctx, id)
	if errors.Is(err, studentstore.ErrNotFound) {
		h.ErrLog.NotFound(w, r, msgNotFound)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load student failed", err, zap.String("student_id", id.Hex()))
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, st)
}

// HandleEdit handles PUT /students/{id}. lessonsAttended and montant are
// optional overrides for opening or corrected balances; when omitted the
// ledger-derived counters are left alone.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "edit student")
	defer cancel()

	before, err := h.Students.GetByID(ctx, id)
	if errors.Is(err, studentstore.ErrNotFound) {
		h.ErrLog.NotFound(w, r, msgNotFound)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load student failed", err, zap.String("student_id", id.Hex()))
		return
	}

	info, bal, err := h.readInput(ctx, r)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "edit student: read input", err)
		return
	}
	if err := h.Students.UpdateInfo(ctx, id, info); err != nil {
		if errors.Is(err, studentstore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, msgNotFound)
			return
		}
		h.ErrLog.LogServerError(w, r, "update student failed", err, zap.String("student_id", id.Hex()))
		return
	}

	var changed []string
	if before.FirstName != info.FirstName {
		changed = append(changed, "first_name")
	}
	if before.LastName != info.LastName {
		changed = append(changed, "last_name")
	}
	if before.DateOfRegistration != info.DateOfRegistration {
		changed = append(changed, "date_of_registration")
	}
	if before.GroupID != info.GroupID {
		changed = append(changed, "group_id")
	}
	if len(changed) > 0 {
		h.Audit.StudentUpdated(ctx, r, id, strings.Join(changed, ","))
	}

	after := before
	after.FirstName, after.LastName = info.FirstName, info.LastName
	after.DateOfRegistration, after.GroupID = info.DateOfRegistration, info.GroupID

	if !bal.empty() {
		if bal.LessonsAttended != nil {
			after.LessonsAttended = *bal.LessonsAttended
		}
		if bal.Montant != nil {
			after.Montant = ledger.Float(ledger.Money(*bal.Montant))
		}
		if after.LessonsAttended != before.LessonsAttended || after.Montant != before.Montant {
			if err := h.Students.SetBalance(ctx, id, after.LessonsAttended, after.Montant); err != nil {
				h.ErrLog.LogServerError(w, r, "set student balance failed", err, zap.String("student_id", id.Hex()))
				return
			}
			h.Audit.BalanceEdited(ctx, r, id, before.LessonsAttended, after.LessonsAttended, before.Montant, after.Montant)
			h.Log.Info("student balance edited",
				zap.String("student_id", id.Hex()),
				zap.Int("lessons_attended", after.LessonsAttended),
				zap.Float64("montant", after.Montant))
		}
	}
	uierrors.WriteJSON(w, http.StatusOK, after)
}

// HandleDelete handles DELETE /students/{id}. Attendance records and
// payment history of the student are left in place.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete student")
	defer cancel()

	n, err := h.Students.Delete(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete student failed", err, zap.String("student_id", id.Hex()))
		return
	}
	if n == 0 {
		h.ErrLog.NotFound(w, r, msgNotFound)
		return
	}
	h.Audit.StudentDeleted(ctx, r, id)
	w.WriteHeader(http.StatusNoContent)
}

// HandlePaidFlag handles POST /students/{id}/paid-flag, flipping the
// coarse paid flag. It has no effect on the ledger.
func (h *Handler) HandlePaidFlag(w http.ResponseWriter, r *http.Request) {
	id, ok := h.studentID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "toggle student paid flag")
	defer cancel()

	st, err := h.Students.GetByID(ctx, id)
	if errors.Is(err, studentstore.ErrNotFound) {
		h.ErrLog.NotFound(w, r, msgNotFound)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load student failed", err, zap.String("student_id", id.Hex()))
		return
	}
	st.Paid = !st.Paid
	if err := h.Students.SetPaidFlag(ctx, id, st.Paid); err != nil {
		h.ErrLog.LogServerError(w, r, "set paid flag failed", err, zap.String("student_id", id.Hex()))
		return
	}
	h.Audit.StudentPaidFlag(ctx, r, id, st.Paid)
	uierrors.WriteJSON(w, http.StatusOK, st)
}
