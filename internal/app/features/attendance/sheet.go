// internal/app/features/attendance/sheet.go
package attendance

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	groupstore "github.com/dalemusser/tutorhub/internal/app/store/groups"
	"github.com/dalemusser/tutorhub/internal/app/system/formutil"
	"github.com/dalemusser/tutorhub/internal/app/system/frdate"
	"github.com/dalemusser/tutorhub/internal/app/system/inputval"
	"github.com/dalemusser/tutorhub/internal/app/system/timeouts"
	"github.com/dalemusser/tutorhub/internal/domain/ledger"
	"github.com/dalemusser/tutorhub/internal/domain/schedule"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// parseMonth reads ?year=&month=, defaulting to the current month.
func parseMonth(r *http.Request, now time.Time) (int, time.Month, error) {
	year, month := now.Year(), now.Month()
	if s := query.Get(r, "year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 2000 || y > 2100 {
			return 0, 0, inputval.Invalid("year", "Year must be between 2000 and 2100.")
		}
		year = y
	}
	if s := query.Get(r, "month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, inputval.Invalid("month", "Month must be between 1 and 12.")
		}
		month = time.Month(m)
	}
	return year, month, nil
}

// ServeSheet handles GET /attendance?group=&year=&month=: the group's
// lesson slots for the month, and for each current student of the group
// their balance and state in every slot.
func (h *Handler) ServeSheet(w http.ResponseWriter, r *http.Request) {
	gid, err := formutil.ObjectID(query.Get(r, "group"), "group", "Group")
	if err == nil && gid.IsZero() {
		err = inputval.Invalid("group", "Group is required.")
	}
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "attendance sheet: bad group", err)
		return
	}
	year, month, err := parseMonth(r, time.Now())
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "attendance sheet: bad month", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "attendance sheet")
	defer cancel()

	g, err := h.Groups.GetByID(ctx, gid)
	if errors.Is(err, groupstore.ErrNotFound) {
		h.ErrLog.NotFound(w, r, "Group not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load group failed", err, zap.String("group_id", gid.Hex()))
		return
	}

	students, err := h.Students.List(ctx, &gid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list students failed", err, zap.String("group_id", gid.Hex()))
		return
	}
	from, to := schedule.MonthRange(year, month)
	recs, err := h.Records.ListByGroupRange(ctx, gid, from, to)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list attendance failed", err, zap.String("group_id", gid.Hex()))
		return
	}

	occ := schedule.Occurrences(g.Schedule, year, month)
	slots := make([]slotView, 0, len(occ))
	col := make(map[string]int, len(occ))
	for i, o := range occ {
		labels, _ := frdate.LabelsFor(o.Date)
		slots = append(slots, slotView{Date: o.Date, Time: o.Time, Day: o.Weekday, Labels: labels})
		col[o.Date+" "+o.Time] = i
	}

	rows := make([]studentRow, 0, len(students))
	index := make(map[string]int, len(students))
	for i, st := range students {
		rows = append(rows, studentRow{
			ID:        st.ID,
			FirstName: st.FirstName,
			LastName:  st.LastName,
			Balance:   ledger.BalanceOf(st),
			Cells:     make([]cell, len(slots)),
		})
		index[st.ID.Hex()] = i
	}
	for _, rec := range recs {
		ri, ok := index[rec.StudentID.Hex()]
		if !ok {
			continue
		}
		// Records for slots no longer in the schedule are not shown.
		ci, ok := col[rec.Date+" "+rec.Time]
		if !ok {
			continue
		}
		rows[ri].Cells[ci] = cell{Recorded: true, Present: rec.Present, Paid: rec.Paid}
	}

	uierrors.WriteJSON(w, http.StatusOK, sheetResponse{
		Group:    g,
		Year:     year,
		Month:    int(month),
		Title:    frdate.MonthTitle(year, month),
		Slots:    slots,
		Students: rows,
	})
}
