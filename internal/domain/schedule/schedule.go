// Package schedule expands a group's weekly schedule into dated lesson slots.
package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/tutorhub/internal/domain/models"
)

// Occurrence is one concrete lesson: a date and a start time.
type Occurrence struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Weekday string `json:"day"`
}

var weekdays = map[string]time.Weekday{
	models.Monday:    time.Monday,
	models.Tuesday:   time.Tuesday,
	models.Wednesday: time.Wednesday,
	models.Thursday:  time.Thursday,
	models.Friday:    time.Friday,
	models.Saturday:  time.Saturday,
	models.Sunday:    time.Sunday,
}

// Weekday maps a schedule day name to a time.Weekday.
func Weekday(day string) (time.Weekday, bool) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(day))]
	return wd, ok
}

// IsWeekday reports whether day is a valid schedule day name.
func IsWeekday(day string) bool {
	_, ok := Weekday(day)
	return ok
}

// Occurrences lists every lesson of the schedule falling in the given month,
// ordered by date then time. Duplicate schedule entries collapse into one
// occurrence; entries with an unknown day are ignored.
func Occurrences(entries []models.ScheduleEntry, year int, month time.Month) []Occurrence {
	byDay := map[time.Weekday][]models.ScheduleEntry{}
	for _, e := range entries {
		if wd, ok := Weekday(e.Day); ok {
			byDay[wd] = append(byDay[wd], e)
		}
	}

	var out []Occurrence
	seen := map[string]bool{}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		for _, e := range byDay[d.Weekday()] {
			date := d.Format("2006-01-02")
			key := date + " " + e.Time
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Occurrence{Date: date, Time: e.Time, Weekday: strings.ToLower(e.Day)})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out
}

// MonthRange returns the first and last dates (YYYY-MM-DD) of a month.
func MonthRange(year int, month time.Month) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}
