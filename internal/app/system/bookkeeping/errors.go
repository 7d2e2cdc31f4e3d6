package bookkeeping

import (
	"errors"

	archivestore "github.com/dalemusser/tutorhub/internal/app/store/archive"
	attendancestore "github.com/dalemusser/tutorhub/internal/app/store/attendance"
	groupstore "github.com/dalemusser/tutorhub/internal/app/store/groups"
	studentstore "github.com/dalemusser/tutorhub/internal/app/store/students"
	"github.com/dalemusser/tutorhub/internal/domain/ledger"
)

func isNotFound(err error) bool {
	return errors.Is(err, studentstore.ErrNotFound) ||
		errors.Is(err, groupstore.ErrNotFound) ||
		errors.Is(err, attendancestore.ErrNotFound) ||
		errors.Is(err, archivestore.ErrNotFound)
}

// IsPrecondition reports whether err is a ledger rule refusing the action.
// Nothing was written in that case.
func IsPrecondition(err error) bool {
	return errors.Is(err, ledger.ErrPaidSessionLocked) ||
		errors.Is(err, ledger.ErrSlotNotPresent) ||
		errors.Is(err, ledger.ErrNoAttendance) ||
		errors.Is(err, ErrSlotConflict)
}

// IsNotFound reports whether err names a missing student, group or archive
// entry.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrGroupNotFound) ||
		errors.Is(err, ErrArchiveNotFound)
}
