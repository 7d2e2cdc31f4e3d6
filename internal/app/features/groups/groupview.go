// internal/app/features/groups/groupview.go
package groups

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	groupstore "github.com/dalemusser/tutorhub/internal/app/store/groups"
	"github.com/dalemusser/tutorhub/internal/app/system/inputval"
	"github.com/dalemusser/tutorhub/internal/app/system/normalize"
	"github.com/dalemusser/tutorhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgNotFound = "Group not found."

func (h *Handler) groupID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.NotFound(w, r, msgNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

// ServeGroupView handles GET /groups/{id}.
func (h *Handler) ServeGroupView(w http.ResponseWriter, r *http.Request) {
	id, ok := h.groupID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "view group")
	defer cancel()

	g, err := h.Groups.GetByID(ctx, id)
	if errors.Is(err, groupstore.ErrNotFound) {
		h.ErrLog.NotFound(w, r, msgNotFound)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load group failed", err, zap.String("group_id", id.Hex()))
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, g)
}

// ServeFeeForDate handles GET /groups/{id}/fee?date=YYYY-MM-DD. The id may
// name a live group, an archived one, or neither (fee 0).
func (h *Handler) ServeFeeForDate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.groupID(w, r)
	if !ok {
		return
	}
	date := normalize.Date(query.Get(r, "date"))
	if !inputval.IsValidDate(date) {
		h.ErrLog.LogBadRequest(w, r, "Date must be a date (YYYY-MM-DD).", map[string]string{"date": "Date must be a date (YYYY-MM-DD)."})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "fee for date")
	defer cancel()

	q, err := h.Ledger.FeeForDate(ctx, id, date)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "fee lookup failed", err, zap.String("group_id", id.Hex()))
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, q)
}
