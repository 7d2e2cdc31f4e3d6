// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Weekday names accepted in a group schedule.
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// ScheduleEntry is one recurring weekly lesson slot.
type ScheduleEntry struct {
	Day  string `bson:"day" json:"day" validate:"required,weekday" label:"Day"`
	Time string `bson:"time" json:"time" validate:"required,hhmm" label:"Time"`
}

// Group is a class with a weekly schedule and a per-session fee.
//
// NOTE:
//   - Students reference a group through Student.GroupID; nothing enforces it.
//   - When a group is deleted, its snapshot and fee timeline move to the
//     archive (see ArchivedGroup) so past sessions can still be priced.
type Group struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Name          string             `bson:"name" json:"name" validate:"required,max=200" label:"Name"`
	NameCI        string             `bson:"name_ci" json:"-"`
	FeePerSession float64            `bson:"fee_per_session" json:"feePerSession" validate:"gt=0" label:"Fee per session"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty" validate:"max=2000" label:"Description"`
	Schedule      []ScheduleEntry    `bson:"schedule" json:"schedule" validate:"min=1,dive" label:"Schedule"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
