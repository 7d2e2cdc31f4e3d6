// internal/domain/models/attendance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttendanceRecord is the presence/payment state of one slot.
// There is at most one record per (StudentID, Date, Time).
type AttendanceRecord struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"studentId"`
	GroupID   primitive.ObjectID `bson:"group_id" json:"groupId"`
	Date      string             `bson:"date" json:"date" validate:"required,ymd" label:"Date"`
	Time      string             `bson:"time" json:"time" validate:"required,hhmm" label:"Time"`
	Present   bool               `bson:"present" json:"present"`
	Paid      bool               `bson:"paid" json:"paid"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}
