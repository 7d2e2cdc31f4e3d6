// internal/app/features/students/create.go
package students

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	groupstore "github.com/dalemusser/tutorhub/internal/app/store/groups"
	studentstore "github.com/dalemusser/tutorhub/internal/app/store/students"
	"github.com/dalemusser/tutorhub/internal/app/system/formutil"
	"github.com/dalemusser/tutorhub/internal/app/system/inputval"
	"github.com/dalemusser/tutorhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// readInput decodes, normalizes and validates the student form and checks
// that the group exists.
func (h *Handler) readInput(ctx context.Context, r *http.Request) (studentstore.Info, balanceEdit, error) {
	var in studentInput
	if err := formutil.Decode(r, &in); err != nil {
		return studentstore.Info{}, balanceEdit{}, err
	}
	in.normalize()
	if err := inputval.Validate(in).Err(); err != nil {
		return studentstore.Info{}, balanceEdit{}, err
	}
	gid, err := formutil.ObjectID(in.GroupID, "GroupID", "Group")
	if err != nil {
		return studentstore.Info{}, balanceEdit{}, err
	}
	if _, err := h.Groups.GetByID(ctx, gid); err != nil {
		if errors.Is(err, groupstore.ErrNotFound) {
			return studentstore.Info{}, balanceEdit{}, inputval.Invalid("GroupID", "Group does not exist.")
		}
		return studentstore.Info{}, balanceEdit{}, err
	}
	return studentstore.Info{
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		DateOfRegistration: in.DateOfRegistration,
		GroupID:            gid,
	}, balanceEdit{LessonsAttended: in.LessonsAttended, Montant: in.Montant}, nil
}

// HandleCreate handles POST /students. New students start with no lessons
// and nothing owed; balance fields in the body are ignored.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create student")
	defer cancel()

	info, _, err := h.readInput(ctx, r)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "create student: read input", err)
		return
	}

	st, err := h.Students.Create(ctx, info)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create student failed", err)
		return
	}

	h.Audit.StudentCreated(ctx, r, st.ID, st.GroupID)
	h.Log.Info("student created",
		zap.String("student_id", st.ID.Hex()),
		zap.String("group_id", st.GroupID.Hex()))
	uierrors.WriteJSON(w, http.StatusCreated, st)
}
