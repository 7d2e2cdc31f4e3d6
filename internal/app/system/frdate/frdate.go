// Package frdate formats attendance-sheet dates in French.
package frdate

import (
	"strconv"
	"time"
)

var months = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

var monthsShort = [...]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

// indexed by time.Weekday (Sunday = 0)
var days = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

var daysShort = [...]string{"Dim", "Lun", "Mar", "Mer", "Jeu", "Ven", "Sam"}

// Long formats t as "3 mars 2025".
func Long(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + months[t.Month()-1] + " " + strconv.Itoa(t.Year())
}

// Short formats t as "3 mars".
func Short(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + monthsShort[t.Month()-1]
}

// Weekday returns the lowercase day name, e.g. "lundi".
func Weekday(t time.Time) string {
	return days[t.Weekday()]
}

// WeekdayShort returns the column abbreviation, e.g. "Lun".
func WeekdayShort(t time.Time) string {
	return daysShort[t.Weekday()]
}

// MonthTitle formats a sheet header such as "Mars 2025".
func MonthTitle(year int, month time.Month) string {
	m := months[month-1]
	r := []rune(m)
	return string(toUpper(r[0])) + string(r[1:]) + " " + strconv.Itoa(year)
}

// toUpper handles the only accented initials that occur in month names.
func toUpper(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z':
		return r - 'a' + 'A'
	case r == 'é':
		return 'É'
	}
	return r
}

// Labels is the set of strings the attendance sheet shows for one slot.
type Labels struct {
	Long         string `json:"long"`
	Short        string `json:"short"`
	Weekday      string `json:"weekday"`
	WeekdayShort string `json:"weekdayShort"`
}

// LabelsFor parses a YYYY-MM-DD date and returns its labels. Unparseable
// input yields zero Labels and false.
func LabelsFor(date string) (Labels, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return Labels{}, false
	}
	return Labels{
		Long:         Long(t),
		Short:        Short(t),
		Weekday:      Weekday(t),
		WeekdayShort: WeekdayShort(t),
	}, true
}
