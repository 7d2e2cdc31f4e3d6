// internal/app/features/groups/types.go
package groups

import (
	"github.com/dalemusser/tutorhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/tutorhub/internal/app/system/inputval"
	"github.com/dalemusser/tutorhub/internal/app/system/normalize"
	"github.com/dalemusser/tutorhub/internal/domain/models"
)

// groupInput is the create/edit form.
type groupInput struct {
	Name          string                 `json:"name" validate:"required,max=200" label:"Name"`
	FeePerSession float64                `json:"feePerSession" validate:"gt=0" label:"Fee per session"`
	Description   string                 `json:"description" validate:"max=2000" label:"Description"`
	Schedule      []models.ScheduleEntry `json:"schedule" validate:"min=1,dive" label:"Schedule"`
}

func (in *groupInput) normalize() {
	in.Name = htmlsanitize.PlainText(normalize.Name(in.Name))
	in.Description = htmlsanitize.PlainText(normalize.Text(in.Description))
	for i := range in.Schedule {
		in.Schedule[i].Day = normalize.Day(in.Schedule[i].Day)
		in.Schedule[i].Time = normalize.Time(in.Schedule[i].Time)
	}
}

// validate runs the tag rules and rejects a slot listed twice.
func (in groupInput) validate() error {
	if err := inputval.Validate(in).Err(); err != nil {
		return err
	}
	seen := make(map[models.ScheduleEntry]bool, len(in.Schedule))
	for _, e := range in.Schedule {
		if seen[e] {
			return inputval.Invalid("Schedule", "Schedule lists "+e.Day+" "+e.Time+" twice.")
		}
		seen[e] = true
	}
	return nil
}

type listResponse struct {
	Groups []models.Group `json:"groups"`
}

type archivedResponse struct {
	Groups []models.ArchivedGroup `json:"groups"`
}

type editResponse struct {
	Group      models.Group `json:"group"`
	FeeChanged bool         `json:"feeChanged"`
}
