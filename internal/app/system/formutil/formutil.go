// Package formutil decodes JSON request bodies into form structs.
//
// A malformed body is reported as an inputval.ValidationError so handlers
// answer it the same way as a failed field rule:
//
//	var in presenceInput
//	if err := formutil.Decode(r, &in); err != nil {
//		h.ErrLog.LogServiceError(w, r, "decode", err)
//		return
//	}
package formutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/tutorhub/internal/app/system/inputval"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxBodyBytes caps the size of a form body.
const MaxBodyBytes = 64 << 10

// Decode reads r's JSON body into dst. Unknown fields are rejected.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return inputval.Invalid("body", "Request body is required.")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return inputval.Invalid("body", "Request body is required.")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return inputval.Invalid(typeErr.Field, typeErr.Field+" has the wrong type.")
		}
		if strings.HasPrefix(err.Error(), "json: unknown field ") {
			field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return inputval.Invalid(field, "Unknown field "+field+".")
		}
		return inputval.Invalid("body", "Request body is not valid JSON.")
	}
	return nil
}

// ObjectID parses a hex id. An empty string yields the zero id so that a
// required rule can report it; anything else that fails to parse is a
// validation error on field.
func ObjectID(s, field, label string) (primitive.ObjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return primitive.NilObjectID, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, inputval.Invalid(field, label+" is not a valid id.")
	}
	return id, nil
}
