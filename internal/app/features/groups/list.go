// internal/app/features/groups/list.go
package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	"github.com/dalemusser/tutorhub/internal/app/system/timeouts"
	"github.com/dalemusser/tutorhub/internal/domain/models"
)

// ServeGroupsList handles GET /groups (live groups, by name).
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list groups")
	defer cancel()

	list, err := h.Groups.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list groups failed", err)
		return
	}
	if list == nil {
		list = []models.Group{}
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Groups: list})
}

// ServeArchivedList handles GET /groups/archived: deleted groups still
// kept for pricing, most recently deleted first.
func (h *Handler) ServeArchivedList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list archived groups")
	defer cancel()

	list, err := h.Ledger.ArchivedGroups(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list archived groups failed", err)
		return
	}
	if list == nil {
		list = []models.ArchivedGroup{}
	}
	uierrors.WriteJSON(w, http.StatusOK, archivedResponse{Groups: list})
}
