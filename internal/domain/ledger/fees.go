package ledger

import (
	"time"

	"github.com/dalemusser/tutorhub/internal/domain/models"
)

// DateLayout is the storage format of session dates.
const DateLayout = "2006-01-02"

// FeeSource records where a resolved fee came from.
type FeeSource string

const (
	FeeLive     FeeSource = "live"
	FeeInterval FeeSource = "interval"
	FeeArchived FeeSource = "archived"
	FeeUnknown  FeeSource = "unknown"
)

// FeeForDate resolves the per-session fee of a group on a date.
//
// A live group always answers with its current fee. Otherwise the archive
// entry is consulted: the first fee interval containing the date wins, then
// the fee the group had when it was archived. A group known to neither
// prices at 0.
//
// Session dates have no time of day, so interval starts are compared by
// calendar day. The first interval is open at its start: sessions on or
// before the creation day take the opening fee.
func FeeForDate(live *models.Group, archived *models.ArchivedGroup, date string) (float64, FeeSource) {
	if live != nil {
		return live.FeePerSession, FeeLive
	}
	if archived == nil {
		return 0, FeeUnknown
	}
	if d, err := time.ParseInLocation(DateLayout, date, time.UTC); err == nil {
		for i, iv := range archived.FeeHistory {
			if d.After(iv.ValidTo) {
				continue
			}
			if i == 0 || !d.Before(startOfDay(iv.ValidFrom)) {
				return iv.FeePerSession, FeeInterval
			}
		}
	}
	return archived.FeePerSession, FeeArchived
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Archive builds the archive entry written just before a group is deleted.
// The group's current fee is closed into the history as an interval ending
// now, and the snapshot replaces whatever was stored before.
func Archive(g models.Group, existing *models.ArchivedGroup, now time.Time) models.ArchivedGroup {
	now = now.UTC()
	rec := snapshot(g, existing)
	rec.FeeHistory = append(rec.FeeHistory, models.FeeInterval{
		FeePerSession: g.FeePerSession,
		ValidFrom:     intervalStart(g, existing, now),
		ValidTo:       now,
	})
	rec.DeletedAt = &now
	return rec
}

// RecordFeeChange closes the interval of the fee a live group had before an
// edit changed it. The entry is not marked deleted.
func RecordFeeChange(before models.Group, existing *models.ArchivedGroup, now time.Time) models.ArchivedGroup {
	now = now.UTC()
	rec := snapshot(before, existing)
	rec.FeeHistory = append(rec.FeeHistory, models.FeeInterval{
		FeePerSession: before.FeePerSession,
		ValidFrom:     intervalStart(before, existing, now),
		ValidTo:       now,
	})
	if existing != nil {
		rec.DeletedAt = existing.DeletedAt
	}
	return rec
}

func snapshot(g models.Group, existing *models.ArchivedGroup) models.ArchivedGroup {
	sched := make([]models.ScheduleEntry, len(g.Schedule))
	copy(sched, g.Schedule)
	rec := models.ArchivedGroup{
		ID:            g.ID,
		Name:          g.Name,
		FeePerSession: g.FeePerSession,
		Description:   g.Description,
		Schedule:      sched,
		CreatedAt:     g.CreatedAt,
	}
	if existing != nil {
		rec.FeeHistory = append([]models.FeeInterval(nil), existing.FeeHistory...)
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = existing.CreatedAt
		}
	}
	return rec
}

// intervalStart picks where the next interval begins: the end of the last
// recorded one (the previous deletion or fee change), else the group's
// creation time, else now.
func intervalStart(g models.Group, existing *models.ArchivedGroup, now time.Time) time.Time {
	if existing != nil {
		if n := len(existing.FeeHistory); n > 0 {
			return existing.FeeHistory[n-1].ValidTo
		}
		if existing.DeletedAt != nil {
			return existing.DeletedAt.UTC()
		}
	}
	if !g.CreatedAt.IsZero() && !g.CreatedAt.After(now) {
		return g.CreatedAt.UTC()
	}
	return now
}
