// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in the JSON error body.
const (
	CodeValidation   = "validation"
	CodePrecondition = "precondition"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeUnauthorized = "unauthorized"
	CodeMethod       = "method_not_allowed"
	CodeRateLimited  = "rate_limited"
	CodeStore        = "store"
)

// Body is the error envelope:
//
//	{"error": {"code": "validation", "message": "...", "fields": {"firstName": "..."}}}
type Body struct {
	Error Detail `json:"error"`
}

// Detail describes one failed request.
type Detail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write sends an error body.
func Write(w http.ResponseWriter, status int, code, msg string, fields map[string]string) {
	WriteJSON(w, status, Body{Error: Detail{Code: code, Message: msg, Fields: fields}})
}

// NotFound is mounted as the router's NotFound handler.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Write(w, http.StatusNotFound, CodeNotFound, "No route for "+r.Method+" "+r.URL.Path+".", nil)
}

// MethodNotAllowed is mounted as the router's MethodNotAllowed handler.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Write(w, http.StatusMethodNotAllowed, CodeMethod, r.Method+" is not allowed here.", nil)
}
