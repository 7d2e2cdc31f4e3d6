// internal/app/features/students/types.go
package students

import (
	"github.com/dalemusser/tutorhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/tutorhub/internal/app/system/normalize"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// studentInput is the create/edit form.
type studentInput struct {
	FirstName          string `json:"firstName" validate:"required,max=100" label:"First name"`
	LastName           string `json:"lastName" validate:"required,max=100" label:"Last name"`
	DateOfRegistration string `json:"dateOfRegistration" validate:"required,ymd" label:"Registration date"`
	GroupID            string `json:"groupId" validate:"required" label:"Group"`

	// Balance overrides, honored on edit only. Omitted means unchanged.
	LessonsAttended *int     `json:"lessonsAttended" validate:"omitempty,gte=0" label:"Lessons attended"`
	Montant         *float64 `json:"montant" validate:"omitempty,gte=0" label:"Amount owed"`
}

// balanceEdit carries the optional counter overrides of an edit.
type balanceEdit struct {
	LessonsAttended *int
	Montant         *float64
}

func (b balanceEdit) empty() bool { return b.LessonsAttended == nil && b.Montant == nil }

func (in *studentInput) normalize() {
	in.FirstName = htmlsanitize.PlainText(normalize.Name(in.FirstName))
	in.LastName = htmlsanitize.PlainText(normalize.Name(in.LastName))
	in.DateOfRegistration = normalize.Date(in.DateOfRegistration)
	in.GroupID = normalize.QueryParam(in.GroupID)
}

// listResponse carries the listed students and counts by the coarse
// paid flag.
type listResponse struct {
	Students []models.Student `json:"students"`
	Total    int              `json:"total"`
	Paid     int              `json:"paid"`
	Pending  int              `json:"pending"`
}

type paymentsResponse struct {
	StudentID primitive.ObjectID           `json:"studentId"`
	Entries   []models.PaymentHistoryEntry `json:"entries"`
	TotalPaid float64                      `json:"totalPaid"`
}
