// internal/domain/models/payment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment history entry kinds.
const (
	PaymentKindPayment  = "payment"
	PaymentKindReversal = "reversal"
)

// PaymentHistoryEntry is an append-only record of a session being paid
// (or, when reversals are recorded, un-paid). Entries are never edited.
type PaymentHistoryEntry struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	StudentID   primitive.ObjectID `bson:"student_id" json:"studentId"`
	GroupID     primitive.ObjectID `bson:"group_id" json:"groupId"`
	SessionDate string             `bson:"session_date" json:"sessionDate" validate:"required,ymd" label:"Session date"`
	SessionTime string             `bson:"session_time" json:"sessionTime" validate:"required,hhmm" label:"Session time"`
	Amount      float64            `bson:"amount" json:"amount" validate:"gte=0" label:"Amount"`
	Kind        string             `bson:"kind" json:"kind" validate:"omitempty,oneof=payment reversal" label:"Kind"`
	OpID        string             `bson:"op_id,omitempty" json:"opId,omitempty"`
	PaidAt      time.Time          `bson:"paid_at" json:"paidAt"`
}

// Signed returns the amount with reversals negated, so summing Signed over a
// student's history yields the net amount collected.
func (e PaymentHistoryEntry) Signed() float64 {
	if e.Kind == PaymentKindReversal {
		return -e.Amount
	}
	return e.Amount
}
