package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/tutorhub/internal/app/system/bookkeeping"
	"github.com/dalemusser/tutorhub/internal/app/system/inputval"
	"go.uber.org/zap"
)

// LogServiceError maps an error from the bookkeeping service to a
// response: validation 400, ledger precondition 409, missing record 404,
// restore of a live group 409, anything else 500. Step failures are logged
// with their op id and the steps already written.
func (e *ErrorLogger) LogServiceError(w http.ResponseWriter, r *http.Request, msg string, err error, extra ...zap.Field) {
	var ve *inputval.ValidationError
	if stderrors.As(err, &ve) {
		e.LogBadRequest(w, r, ve.Error(), ve.Fields)
		return
	}
	switch {
	case bookkeeping.IsPrecondition(err):
		e.LogPrecondition(w, r, preconditionCause(err), extra...)
		return
	case stderrors.Is(err, bookkeeping.ErrGroupLive):
		e.LogConflict(w, r, bookkeeping.ErrGroupLive.Error())
		return
	case bookkeeping.IsNotFound(err):
		e.NotFound(w, r, notFoundMessage(err))
		return
	}

	var se *bookkeeping.StepError
	if stderrors.As(err, &se) {
		extra = append(extra,
			zap.String("op_id", se.OpID),
			zap.String("step", se.Step),
			zap.Strings("completed", se.Completed))
	}
	e.LogServerError(w, r, msg, err, extra...)
}

// preconditionCause strips the StepError wrapper so the client sees the
// rule's own message.
func preconditionCause(err error) error {
	var se *bookkeeping.StepError
	if stderrors.As(err, &se) {
		return se.Err
	}
	return err
}

func notFoundMessage(err error) string {
	switch {
	case stderrors.Is(err, bookkeeping.ErrStudentNotFound):
		return "Student not found."
	case stderrors.Is(err, bookkeeping.ErrGroupNotFound):
		return "Group not found."
	default:
		return "No archived record for this group."
	}
}
