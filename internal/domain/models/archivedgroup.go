// internal/domain/models/archivedgroup.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeeInterval is the fee that applied to a group between two instants.
type FeeInterval struct {
	FeePerSession float64   `bson:"fee_per_session" json:"feePerSession" validate:"gt=0" label:"Fee per session"`
	ValidFrom     time.Time `bson:"valid_from" json:"validFrom"`
	ValidTo       time.Time `bson:"valid_to" json:"validTo"`
}

// ArchivedGroup is the archive entry for a group: the last snapshot seen
// and the fee timeline used to price sessions of groups that no longer exist.
//
// DeletedAt is nil while the group is live and only fee changes have been
// recorded for it.
type ArchivedGroup struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Name          string             `bson:"name" json:"name"`
	FeePerSession float64            `bson:"fee_per_session" json:"feePerSession" validate:"gt=0" label:"Fee per session"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Schedule      []ScheduleEntry    `bson:"schedule" json:"schedule"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	DeletedAt     *time.Time         `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"`
	FeeHistory    []FeeInterval      `bson:"fee_history" json:"feeHistory" validate:"dive" label:"Fee history"`
}

// Snapshot rebuilds the live Group document the archive entry was taken from.
func (a ArchivedGroup) Snapshot() Group {
	sched := make([]ScheduleEntry, len(a.Schedule))
	copy(sched, a.Schedule)
	return Group{
		ID:            a.ID,
		Name:          a.Name,
		FeePerSession: a.FeePerSession,
		Description:   a.Description,
		Schedule:      sched,
		CreatedAt:     a.CreatedAt,
	}
}
