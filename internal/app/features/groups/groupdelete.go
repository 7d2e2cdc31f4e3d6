// internal/app/features/groups/groupdelete.go
package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	"github.com/dalemusser/tutorhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleDeleteGroup handles DELETE /groups/{id}. The group is archived
// first so sessions already recorded against it keep their fee. Students
// still pointing at the group are left as they are.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := h.groupID(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete group")
	defer cancel()

	rec, err := h.Ledger.ArchiveAndDeleteGroup(ctx, id)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "archive group failed", err, zap.String("group_id", id.Hex()))
		return
	}
	h.Audit.GroupArchived(ctx, r, id, len(rec.FeeHistory))
	uierrors.WriteJSON(w, http.StatusOK, rec)
}

// HandleRestoreGroup handles POST /groups/archived/{id}/restore.
func (h *Handler) HandleRestoreGroup(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.NotFound(w, r, "No archived record for this group.")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "restore group")
	defer cancel()

	g, err := h.Ledger.RestoreGroup(ctx, id)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "restore group failed", err, zap.String("group_id", id.Hex()))
		return
	}
	h.Audit.GroupRestored(ctx, r, id)
	uierrors.WriteJSON(w, http.StatusCreated, g)
}
