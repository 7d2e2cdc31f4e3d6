// internal/app/features/attendance/toggle.go
package attendance

import (
	"net/http"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	"github.com/dalemusser/tutorhub/internal/app/system/bookkeeping"
	"github.com/dalemusser/tutorhub/internal/app/system/formutil"
	"github.com/dalemusser/tutorhub/internal/app/system/normalize"
	"github.com/dalemusser/tutorhub/internal/app/system/timeouts"
)

func readSlot(r *http.Request) (bookkeeping.SlotKey, error) {
	var in slotInput
	if err := formutil.Decode(r, &in); err != nil {
		return bookkeeping.SlotKey{}, err
	}
	sid, err := formutil.ObjectID(in.StudentID, "StudentID", "Student")
	if err != nil {
		return bookkeeping.SlotKey{}, err
	}
	gid, err := formutil.ObjectID(in.GroupID, "GroupID", "Group")
	if err != nil {
		return bookkeeping.SlotKey{}, err
	}
	// The service validates the key, including the zero ids.
	return bookkeeping.SlotKey{
		StudentID: sid,
		GroupID:   gid,
		Date:      normalize.Date(in.Date),
		Time:      normalize.Time(in.Time),
	}, nil
}

// HandlePresence handles POST /attendance/presence.
func (h *Handler) HandlePresence(w http.ResponseWriter, r *http.Request) {
	k, err := readSlot(r)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "presence: read input", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "toggle presence")
	defer cancel()

	res, err := h.Ledger.SetPresence(ctx, k)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "toggle presence failed", err)
		return
	}
	h.Audit.PresenceToggled(ctx, r, k.StudentID, k.GroupID, k.Date, k.Time, res.Record.Present, res.OpID)
	uierrors.WriteJSON(w, http.StatusOK, res)
}

// HandlePaid handles POST /attendance/paid.
func (h *Handler) HandlePaid(w http.ResponseWriter, r *http.Request) {
	k, err := readSlot(r)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "paid: read input", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "toggle paid")
	defer cancel()

	res, err := h.Ledger.SetPaid(ctx, k)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "toggle paid failed", err)
		return
	}
	h.Audit.PaymentToggled(ctx, r, k.StudentID, k.GroupID, k.Date, k.Time, res.Record.Paid, res.OpID)
	uierrors.WriteJSON(w, http.StatusOK, res)
}
