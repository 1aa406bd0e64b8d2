package shift

import "errors"

var (
	ErrShiftNotFound     = errors.New("shift not found")
	ErrBindingNotFound   = errors.New("employee has no active shift binding")
	ErrShiftTimesMissing = errors.New("shift has no start or end time configured")
	ErrInvalidShift      = errors.New("invalid shift definition")
)
