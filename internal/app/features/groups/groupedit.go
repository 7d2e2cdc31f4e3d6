// internal/app/features/groups/groupedit.go
package groups

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	groupstore "github.com/dalemusser/tutorhub/internal/app/store/groups"
	"github.com/dalemusser/tutorhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleEditGroup handles PUT /groups/{id}. A fee change closes the old fee
// into the group's archived timeline before the new fee is saved.
func (h *Handler) HandleEditGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.groupID(w, r)
	if !ok {
		return
	}
	in, err := h.readInput(r)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "edit group: read input", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "edit group")
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
	g.Name = in.Name
	g.FeePerSession = in.FeePerSession
	g.Description = in.Description
	g.Schedule = in.Schedule

	feeChanged, err := h.Ledger.UpdateGroup(ctx, g)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "update group failed", err, zap.String("group_id", id.Hex()))
		return
	}
	h.Audit.GroupUpdated(ctx, r, id, feeChanged)
	uierrors.WriteJSON(w, http.StatusOK, editResponse{Group: g, FeeChanged: feeChanged})
}
