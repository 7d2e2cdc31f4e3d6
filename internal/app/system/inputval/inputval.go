// Package inputval validates form input and stored documents using
// struct tags:
//
//	type createStudentInput struct {
//	    FirstName string `validate:"required,max=100" label:"First name"`
//	}
//
// The label tag names the field in user-facing messages.
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/tutorhub/internal/domain/schedule"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var hhmmRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
		return f.Name
	})
	_ = val.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		return IsValidDate(fl.Field().String())
	})
	_ = val.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return IsValidTime(fl.Field().String())
	})
	_ = val.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return schedule.IsWeekday(fl.Field().String())
	})
	return val
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string // struct path, e.g. "Schedule[0].Day"
	Label   string
	Message string
}

// Result holds validation outcomes.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// Fields maps field paths to messages.
func (r Result) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Err converts the result to an error (nil when valid).
func (r Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return &ValidationError{Fields: r.Fields(), msg: r.First()}
}

// ValidationError is returned by Err and by store-boundary checks.
type ValidationError struct {
	Fields map[string]string
	msg    string
}

func (e *ValidationError) Error() string { return e.msg }

// Invalid builds a single-field ValidationError.
func Invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}, msg: msg}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate runs the struct-tag rules on s.
func Validate(s any) Result {
	err := v.Struct(s)
	if err == nil {
		return Result{}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Result{Errors: []FieldError{{Message: err.Error()}}}
	}
	res := Result{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fieldPath(fe.StructNamespace()),
			Label:   fe.Field(),
			Message: message(fe),
		})
	}
	return res
}

func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s needs at least %s entry.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, fe.Param())
	case "ymd":
		return label + " must be a date (YYYY-MM-DD)."
	case "hhmm":
		return label + " must be a time (HH:MM)."
	case "weekday":
		return label + " must be a day of the week."
	default:
		return label + " is invalid."
	}
}

// IsValidDate reports whether s is a YYYY-MM-DD calendar date.
func IsValidDate(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// IsValidTime reports whether s is a 24h HH:MM time.
func IsValidTime(s string) bool {
	return hhmmRe.MatchString(strings.TrimSpace(s))
}

// IsValidObjectID reports whether s is a 24-hex-character ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}
