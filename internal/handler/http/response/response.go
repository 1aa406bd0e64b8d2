package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope codes for errors that do not come from an attendance refusal.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
	codeEncodingFailure = "ENCODING_ERROR"
)

type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// writeJSON encodes payload before touching w so a failed encode can still
// report itself with the right status.
func writeJSON(w http.ResponseWriter, statusCode int, payload Response) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(Response{Error: &ErrorDetail{
			Code:    codeEncodingFailure,
			Message: "Failed to encode response",
		}})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(append(body, '\n'))
}

func ok(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	writeJSON(w, statusCode, Response{Success: true, Message: message, Data: data})
}

// Success responses
func Success(w http.ResponseWriter, data interface{}) {
	ok(w, http.StatusOK, "", data)
}

func SuccessWithMessage(w http.ResponseWriter, message string, data interface{}) {
	ok(w, http.StatusOK, message, data)
}

func Created(w http.ResponseWriter, message string, data interface{}) {
	ok(w, http.StatusCreated, message, data)
}

// Error responses

// Fail writes an error envelope with an explicit status and machine-readable code.
func Fail(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	writeJSON(w, statusCode, Response{Error: &ErrorDetail{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

func BadRequest(w http.ResponseWriter, message string, details map[string]string) {
	Fail(w, http.StatusBadRequest, CodeBadRequest, message, details)
}

func ValidationError(w http.ResponseWriter, details map[string]string) {
	Fail(w, http.StatusUnprocessableEntity, CodeValidation, "Validation failed", details)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Fail(w, http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	Fail(w, http.StatusForbidden, CodeForbidden, message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	Fail(w, http.StatusNotFound, CodeNotFound, message, nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	Fail(w, http.StatusInternalServerError, CodeInternal, message, nil)
}
