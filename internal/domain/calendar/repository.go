package calendar

import (
	"context"
	"time"
)

type HolidayRepository interface {
	// ListHolidays returns holidays of every scope dated between from and to inclusive.
	ListHolidays(ctx context.Context, from, to time.Time) ([]Holiday, error)
}
