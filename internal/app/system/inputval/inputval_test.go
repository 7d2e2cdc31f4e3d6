package inputval

import (
	"testing"

	"github.com/dalemusser/tutorhub/internal/domain/models"
)

func TestIsValidDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2025-03-01", true},
		{"2024-02-29", true},
		{"2025-02-29", false},
		{"2025-3-1", false},
		{"01/03/2025", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsValidDate(tt.in); got != tt.want {
				t.Errorf("IsValidDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidTime(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"08:00", true},
		{"23:59", true},
		{"24:00", false},
		{"8:00", false},
		{"10:60", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsValidTime(tt.in); got != tt.want {
				t.Errorf("IsValidTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValidObjectID(t *testing.T) {
	if !IsValidObjectID("507f1f77bcf86cd799439011") {
		t.Error("expected valid ObjectID")
	}
	if IsValidObjectID("not-an-id") {
		t.Error("expected invalid ObjectID")
	}
}

func TestValidate(t *testing.T) {
	type input struct {
		Name string `validate:"required,max=10" label:"Full name"`
		Date string `validate:"required,ymd" label:"Date"`
	}

	tests := []struct {
		name      string
		in        input
		wantFirst string
	}{
		{"valid", input{Name: "Amel", Date: "2025-01-10"}, ""},
		{"missing name", input{Date: "2025-01-10"}, "Full name is required."},
		{"long name", input{Name: "abcdefghijk", Date: "2025-01-10"}, "Full name must be at most 10 characters."},
		{"bad date", input{Name: "Amel", Date: "10/01/2025"}, "Date must be a date (YYYY-MM-DD)."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.in)
			if got := res.First(); got != tt.wantFirst {
				t.Errorf("First() = %q, want %q", got, tt.wantFirst)
			}
			if res.HasErrors() != (tt.wantFirst != "") {
				t.Errorf("HasErrors() = %v", res.HasErrors())
			}
		})
	}
}

func TestValidate_GroupDocument(t *testing.T) {
	g := models.Group{
		Name:          "Maths 3e",
		FeePerSession: 0,
		Schedule:      []models.ScheduleEntry{{Day: "funday", Time: "10:00"}},
	}
	fields := Validate(g).Fields()
	if _, ok := fields["FeePerSession"]; !ok {
		t.Errorf("expected FeePerSession error, got %v", fields)
	}
	if msg, ok := fields["Schedule[0].Day"]; !ok || msg != "Day must be a day of the week." {
		t.Errorf("expected schedule day error, got %v", fields)
	}

	g.FeePerSession = 20
	g.Schedule = nil
	if msg := Validate(g).Fields()["Schedule"]; msg != "Schedule needs at least 1 entry." {
		t.Errorf("empty schedule: got %q", msg)
	}
}

func TestResultErr(t *testing.T) {
	if err := (Result{}).Err(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	err := Result{Errors: []FieldError{{Field: "Name", Message: "Name is required."}}}.Err()
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.Error() != "Name is required." {
		t.Errorf("Error() = %q", err.Error())
	}
}
