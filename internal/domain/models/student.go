// internal/domain/models/student.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student is an enrolled learner and the owner of a running balance.
//
// LessonsAttended and Montant are derived by the attendance ledger:
// every present, unpaid session adds its fee to Montant. An admin edit
// may override both to set an opening balance. Paid is the
// coarse legacy flag and is independent of per-session payment.
type Student struct {
	ID                 primitive.ObjectID `bson:"_id" json:"id"`
	FirstName          string             `bson:"first_name" json:"firstName" validate:"required,max=100" label:"First name"`
	FirstNameCI        string             `bson:"first_name_ci" json:"-"`
	LastName           string             `bson:"last_name" json:"lastName" validate:"required,max=100" label:"Last name"`
	LastNameCI         string             `bson:"last_name_ci" json:"-"`
	DateOfRegistration string             `bson:"date_of_registration" json:"dateOfRegistration" validate:"required,ymd" label:"Registration date"`
	GroupID            primitive.ObjectID `bson:"group_id" json:"groupId"`
	Paid               bool               `bson:"paid" json:"paid"`
	LessonsAttended    int                `bson:"lessons_attended" json:"lessonsAttended" validate:"gte=0" label:"Lessons attended"`
	Montant            float64            `bson:"montant" json:"montant" validate:"gte=0" label:"Amount owed"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// FullName returns "First Last".
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
