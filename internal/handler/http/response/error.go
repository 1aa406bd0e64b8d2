package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

var kindStatus = map[attendance.Kind]int{
	attendance.KindAlreadyRecorded: http.StatusConflict,
	attendance.KindNoShiftAssigned: http.StatusNotFound,
	attendance.KindHolidayClosed:   http.StatusForbidden,
	attendance.KindOffDay:          http.StatusForbidden,
	attendance.KindTooEarly:        http.StatusUnprocessableEntity,
	attendance.KindWindowClosed:    http.StatusUnprocessableEntity,
	attendance.KindOutOfRange:      http.StatusForbidden,
	attendance.KindNoActiveSession: http.StatusConflict,
	attendance.KindDataIntegrity:   http.StatusInternalServerError,
}

// StatusForKind returns the HTTP status an attendance refusal of kind is reported with.
func StatusForKind(kind attendance.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Attendance refusals carry their own kind and context
	var attErr *attendance.Error
	if errors.As(err, &attErr) {
		if attErr.Kind == attendance.KindDataIntegrity {
			slog.Error("Attendance data integrity error", "error", err)
		}
		Fail(w, StatusForKind(attErr.Kind), string(attErr.Kind), attErr.Message, attErr.Details)
		return
	}

	switch {
	case errors.Is(err, attendance.ErrInvalidSweepTime):
		ValidationError(w, map[string]string{"as_of": err.Error()})

	// Default
	default:
		slog.Error("Unexpected error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
