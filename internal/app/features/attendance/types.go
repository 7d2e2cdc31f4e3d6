// internal/app/features/attendance/types.go
package attendance

import (
	"github.com/dalemusser/tutorhub/internal/app/system/frdate"
	"github.com/dalemusser/tutorhub/internal/domain/ledger"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// slotInput is the body of both toggles.
type slotInput struct {
	StudentID string `json:"studentId"`
	GroupID   string `json:"groupId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// slotView is one column of the month sheet.
type slotView struct {
	Date   string        `json:"date"`
	Time   string        `json:"time"`
	Day    string        `json:"day"`
	Labels frdate.Labels `json:"labels"`
}

// cell is a student's state in one slot. Recorded is false until the slot
// has been toggled at least once.
type cell struct {
	Recorded bool `json:"recorded"`
	Present  bool `json:"present"`
	Paid     bool `json:"paid"`
}

type studentRow struct {
	ID        primitive.ObjectID `json:"id"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Balance   ledger.Balance     `json:"balance"`
	Cells     []cell             `json:"cells"`
}

type sheetResponse struct {
	Group    models.Group `json:"group"`
	Year     int          `json:"year"`
	Month    int          `json:"month"`
	Title    string       `json:"title"`
	Slots    []slotView   `json:"slots"`
	Students []studentRow `json:"students"`
}
