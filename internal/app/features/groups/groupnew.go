// internal/app/features/groups/groupnew.go
package groups

import (
	"net/http"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	"github.com/dalemusser/tutorhub/internal/app/system/formutil"
	"github.com/dalemusser/tutorhub/internal/app/system/timeouts"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.uber.org/zap"
)

func (h *Handler) readInput(r *http.Request) (groupInput, error) {
	var in groupInput
	if err := formutil.Decode(r, &in); err != nil {
		return groupInput{}, err
	}
	in.normalize()
	return in, in.validate()
}

// HandleCreateGroup handles POST /groups.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	in, err := h.readInput(r)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "create group: read input", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create group")
	defer cancel()

	g, err := h.Groups.Create(ctx, models.Group{
		Name:          in.Name,
		FeePerSession: in.FeePerSession,
		Description:   in.Description,
		Schedule:      in.Schedule,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create group failed", err)
		return
	}

	h.Audit.GroupCreated(ctx, r, g.ID, g.Name)
	h.Log.Info("group created", zap.String("group_id", g.ID.Hex()), zap.Float64("fee", g.FeePerSession))
	uierrors.WriteJSON(w, http.StatusCreated, g)
}
