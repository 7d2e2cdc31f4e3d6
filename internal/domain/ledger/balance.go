package ledger

import (
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"github.com/shopspring/decimal"
)

// Money converts a stored amount to a decimal rounded to cents.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Float converts a decimal amount back to its stored form.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// Balance is a student's derived counters.
type Balance struct {
	LessonsAttended int     `json:"lessonsAttended"`
	Montant         float64 `json:"montant"`
}

// BalanceOf reads the counters from a student document.
func BalanceOf(s models.Student) Balance {
	return Balance{LessonsAttended: s.LessonsAttended, Montant: s.Montant}
}

// Apply adds the deltas, flooring both counters at zero.
func (b Balance) Apply(lessons int, montant decimal.Decimal) Balance {
	n := b.LessonsAttended + lessons
	if n < 0 {
		n = 0
	}
	m := Money(b.Montant).Add(montant)
	if m.IsNegative() {
		m = decimal.Zero
	}
	return Balance{LessonsAttended: n, Montant: Float(m)}
}

// FeeFunc resolves the fee of a session of groupID on date.
type FeeFunc func(groupID string, date string) float64

// Expected recomputes the balance a student should carry given all of its
// attendance records: every present slot counts as a lesson, and every
// present unpaid slot adds its fee.
func Expected(records []models.AttendanceRecord, fee FeeFunc) Balance {
	lessons := 0
	owed := decimal.Zero
	for _, r := range records {
		if !r.Present {
			continue
		}
		lessons++
		if !r.Paid {
			owed = owed.Add(Money(fee(r.GroupID.Hex(), r.Date)))
		}
	}
	return Balance{LessonsAttended: lessons, Montant: Float(owed)}
}

// Drift reports whether stored differs from expected.
func Drift(stored, expected Balance) bool {
	return stored.LessonsAttended != expected.LessonsAttended ||
		!Money(stored.Montant).Equal(Money(expected.Montant))
}
