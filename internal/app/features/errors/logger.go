package errors

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorLogger writes error responses and logs them with request context.
// Server errors are logged at Error with the cause; the client only sees a
// generic message.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger builds an ErrorLogger. A nil logger is replaced by a no-op.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{Log: logger}
}

func requestFields(r *http.Request, extra []zap.Field) []zap.Field {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	return append(fields, extra...)
}

// LogServerError responds 500 with code "store".
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, extra ...zap.Field) {
	e.Log.Error(msg, append(requestFields(r, extra), zap.Error(err))...)
	Write(w, http.StatusInternalServerError, CodeStore, "Something went wrong while saving or loading data. Please try again.", nil)
}

// LogBadRequest responds 400 with field messages.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, fields map[string]string) {
	e.Log.Info("bad request", requestFields(r, []zap.Field{zap.String("reason", msg)})...)
	Write(w, http.StatusBadRequest, CodeValidation, msg, fields)
}

// LogPrecondition responds 409 when a ledger rule blocks the action.
func (e *ErrorLogger) LogPrecondition(w http.ResponseWriter, r *http.Request, err error, extra ...zap.Field) {
	e.Log.Info("precondition failed", append(requestFields(r, extra), zap.Error(err))...)
	Write(w, http.StatusConflict, CodePrecondition, err.Error(), nil)
}

// LogConflict responds 409 for state conflicts that are not ledger rules
// (e.g. restoring a group that is already live).
func (e *ErrorLogger) LogConflict(w http.ResponseWriter, r *http.Request, msg string) {
	e.Log.Info("conflict", requestFields(r, []zap.Field{zap.String("reason", msg)})...)
	Write(w, http.StatusConflict, CodeConflict, msg, nil)
}

// NotFound responds 404 with a resource-specific message.
func (e *ErrorLogger) NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	Write(w, http.StatusNotFound, CodeNotFound, msg, nil)
}
