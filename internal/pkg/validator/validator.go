package validator

import (
	"math"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Coordinate validation
func IsValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

func IsValidLongitude(lon float64) bool {
	return !math.IsNaN(lon) && lon >= -180 && lon <= 180
}

// IsNotFuture reports whether t is at or before now.
func IsNotFuture(t, now time.Time) bool {
	return !t.After(now)
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}
