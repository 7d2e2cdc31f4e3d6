// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"time"

	uierrors "github.com/dalemusser/tutorhub/internal/app/features/errors"
	"github.com/dalemusser/tutorhub/internal/app/store/audit"
	"github.com/dalemusser/tutorhub/internal/app/system/formutil"
	"github.com/dalemusser/tutorhub/internal/app/system/inputval"
	"github.com/dalemusser/tutorhub/internal/app/system/normalize"
	"github.com/dalemusser/tutorhub/internal/app/system/paging"
	"github.com/dalemusser/tutorhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// parseFilter reads the list filters. Dates are whole UTC days; the end
// date is inclusive.
func parseFilter(r *http.Request, page int) (audit.QueryFilter, error) {
	f := audit.QueryFilter{
		Category:  normalize.QueryParam(query.Get(r, "category")),
		EventType: normalize.QueryParam(query.Get(r, "event_type")),
		Limit:     paging.PageSize,
		Offset:    paging.Offset(page),
	}
	if !knownCategory(f.Category) {
		return f, inputval.Invalid("category", "Unknown category.")
	}

	sid, err := formutil.ObjectID(query.Get(r, "student"), "student", "Student")
	if err != nil {
		return f, err
	}
	if !sid.IsZero() {
		f.StudentID = &sid
	}
	gid, err := formutil.ObjectID(query.Get(r, "group"), "group", "Group")
	if err != nil {
		return f, err
	}
	if !gid.IsZero() {
		f.GroupID = &gid
	}

	if s := normalize.Date(query.Get(r, "start_date")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return f, inputval.Invalid("start_date", "Start date must be YYYY-MM-DD.")
		}
		f.StartTime = &t
	}
	if s := normalize.Date(query.Get(r, "end_date")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return f, inputval.Invalid("end_date", "End date must be YYYY-MM-DD.")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.EndTime = &end
	}
	if f.StartTime != nil && f.EndTime != nil && f.EndTime.Before(*f.StartTime) {
		return f, inputval.Invalid("end_date", "End date is before start date.")
	}
	return f, nil
}

// ServeList handles GET /audit, newest events first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	page := paging.ParsePage(r)
	filter, err := parseFilter(r, page)
	if err != nil {
		h.ErrLog.LogServiceError(w, r, "audit log: bad filter", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events failed", err)
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count audit events failed", err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	uierrors.WriteJSON(w, http.StatusOK, listResponse{
		Events:     events,
		Categories: allCategories(),
		Page:       paging.Compute(page, total),
	})
}
