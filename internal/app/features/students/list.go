// internal/app/features/students/list.go
package students

import (
	"net/http"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	"github.com/dalemusser/tutorhub/internal/app/system/formutil"
	"github.com/dalemusser/tutorhub/internal/app/system/timeouts"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /students, optionally filtered by ?group=.
// Students are ordered by last name then first name. The counts follow
// the coarse paid flag of the listed students.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list students")
	defer cancel()

	var filter *primitive.ObjectID
	if g := query.Get(r, "group"); g != "" {
		id, err := formutil.ObjectID(g, "group", "Group")
		if err != nil {
			h.ErrLog.LogServiceError(w, r, "bad group filter", err)
			return
		}
		filter = &id
	}

	list, err := h.Students.List(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list students failed", err)
		return
	}
	if list == nil {
		list = []models.Student{}
	}
	resp := listResponse{Students: list, Total: len(list)}
	for _, st := range list {
		if st.Paid {
			resp.Paid++
		}
	}
	resp.Pending = resp.Total - resp.Paid
	uierrors.WriteJSON(w, http.StatusOK, resp)
}
