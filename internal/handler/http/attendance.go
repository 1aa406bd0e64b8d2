package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	RunSweep(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	clock             func() time.Time
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		clock:             time.Now,
	}
}

// decodeJSON decodes an optional JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckInRequest
	if err := decodeJSON(r, &req); err != nil {
		slog.Error("Failed to decode check-in request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.EmployeeCode, _ = middleware.EmployeeCode(r.Context())

	// Call service, which validates the request
	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check in successful", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckOutRequest
	if err := decodeJSON(r, &req); err != nil {
		slog.Error("Failed to decode check-out request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.EmployeeCode, _ = middleware.EmployeeCode(r.Context())

	// Call service, which validates the request
	result, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check out successful", result)
}

// Status implements AttendanceHandler.
func (h *attendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	employeeCode, ok := middleware.EmployeeCode(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing employee_code claim")
		return
	}

	result, err := h.attendanceService.Status(r.Context(), employeeCode)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// RunSweep implements AttendanceHandler.
func (h *attendanceHandlerImpl) RunSweep(w http.ResponseWriter, r *http.Request) {
	var req attendance.SweepRequest
	if err := decodeJSON(r, &req); err != nil {
		slog.Error("Failed to decode sweep request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	now := h.clock()
	if err := req.Validate(now); err != nil {
		response.HandleError(w, err)
		return
	}

	asOf := now
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	report, err := h.attendanceService.RunAbsenceSweep(r.Context(), asOf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Absence sweep completed", report)
}
