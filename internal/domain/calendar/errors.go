package calendar

import "errors"

var ErrInvalidHolidayRange = errors.New("holiday range end is before its start")
