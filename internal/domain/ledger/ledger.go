// Package ledger holds the attendance/payment bookkeeping rules.
//
// Everything here is pure: callers pass in a snapshot of the slot (and the
// fee that applies to it) and get back the next slot state plus the list of
// side effects that must be applied to the store for the student's balance
// to stay consistent with the set of present, unpaid slots.
package ledger

import (
	"errors"

	"github.com/dalemusser/tutorhub/internal/domain/models"
	"github.com/shopspring/decimal"
)

// Precondition violations. These never mutate anything.
var (
	ErrPaidSessionLocked = errors.New("this session is already paid; unmark the payment before marking the student absent")
	ErrSlotNotPresent    = errors.New("cannot record a payment for a session where the student is absent")
	ErrNoAttendance      = errors.New("no attendance record exists for this session")
)

// Slot is the current state of one (student, date, time) attendance slot.
// A slot with Exists=false has never been toggled.
type Slot struct {
	Exists  bool
	Present bool
	Paid    bool
}

// SlotOf converts a stored record (nil when absent) into a Slot.
func SlotOf(rec *models.AttendanceRecord) Slot {
	if rec == nil {
		return Slot{}
	}
	return Slot{Exists: true, Present: rec.Present, Paid: rec.Paid}
}

// EffectKind names a side effect a transition asks the caller to perform.
type EffectKind string

const (
	// CreateRecord inserts the attendance record with Effect.Present/Paid.
	CreateRecord EffectKind = "create_record"
	// UpdateRecord sets present and paid on the existing record.
	UpdateRecord EffectKind = "update_record"
	// AdjustBalance applies LessonsDelta and MontantDelta to the student.
	AdjustBalance EffectKind = "adjust_balance"
	// AppendHistory appends a payment history entry of EntryKind for Amount.
	AppendHistory EffectKind = "append_history"
)

// Effect describes one store mutation.
type Effect struct {
	Kind EffectKind

	Present bool
	Paid    bool

	LessonsDelta int
	MontantDelta decimal.Decimal

	EntryKind string
	Amount    decimal.Decimal
}

// Transition is the outcome of a toggle: the slot before and after, the fee
// used, and the ordered effects to apply.
type Transition struct {
	Before  Slot
	After   Slot
	Fee     decimal.Decimal
	Effects []Effect
}

// BalanceDelta sums the AdjustBalance effects of the transition.
func (t Transition) BalanceDelta() (lessons int, montant decimal.Decimal) {
	montant = decimal.Zero
	for _, e := range t.Effects {
		if e.Kind == AdjustBalance {
			lessons += e.LessonsDelta
			montant = montant.Add(e.MontantDelta)
		}
	}
	return lessons, montant
}

// History returns the AppendHistory effect, if any.
func (t Transition) History() (Effect, bool) {
	for _, e := range t.Effects {
		if e.Kind == AppendHistory {
			return e, true
		}
	}
	return Effect{}, false
}

// TogglePresence flips the presence flag of a slot.
//
// absent→present adds one lesson and the fee to the balance; present→absent
// on an unpaid slot removes them again and forces paid=false on the record.
// Clearing presence on a paid slot is refused with ErrPaidSessionLocked.
func TogglePresence(cur Slot, fee float64) (Transition, error) {
	if cur.Present && cur.Paid {
		return Transition{}, ErrPaidSessionLocked
	}

	f := Money(fee)
	// An absent slot is never paid, so the paid flag only survives while
	// the student stays present.
	next := Slot{Exists: true, Present: !cur.Present, Paid: false}

	t := Transition{Before: cur, After: next, Fee: f}
	if !cur.Exists {
		t.Effects = append(t.Effects, Effect{Kind: CreateRecord, Present: true, Paid: false})
	} else {
		t.Effects = append(t.Effects, Effect{Kind: UpdateRecord, Present: next.Present, Paid: next.Paid})
	}

	switch {
	case !cur.Present && next.Present:
		t.Effects = append(t.Effects, Effect{Kind: AdjustBalance, LessonsDelta: 1, MontantDelta: f})
	case cur.Present && !next.Present && !cur.Paid:
		t.Effects = append(t.Effects, Effect{Kind: AdjustBalance, LessonsDelta: -1, MontantDelta: f.Neg()})
	}
	return t, nil
}

// TogglePaid flips the paid flag of a present slot.
//
// unpaid→paid removes the fee from the balance and appends a payment entry.
// paid→unpaid puts the fee back; the original payment entry is left alone,
// and a reversal entry is appended only when recordReversals is set.
func TogglePaid(cur Slot, fee float64, recordReversals bool) (Transition, error) {
	if !cur.Exists {
		return Transition{}, ErrNoAttendance
	}
	if !cur.Present {
		return Transition{}, ErrSlotNotPresent
	}

	f := Money(fee)
	next := Slot{Exists: true, Present: true, Paid: !cur.Paid}
	t := Transition{Before: cur, After: next, Fee: f}
	t.Effects = append(t.Effects, Effect{Kind: UpdateRecord, Present: true, Paid: next.Paid})

	if next.Paid {
		t.Effects = append(t.Effects,
			Effect{Kind: AdjustBalance, MontantDelta: f.Neg()},
			Effect{Kind: AppendHistory, EntryKind: models.PaymentKindPayment, Amount: f},
		)
		return t, nil
	}

	t.Effects = append(t.Effects, Effect{Kind: AdjustBalance, MontantDelta: f})
	if recordReversals {
		t.Effects = append(t.Effects, Effect{Kind: AppendHistory, EntryKind: models.PaymentKindReversal, Amount: f})
	}
	return t, nil
}
