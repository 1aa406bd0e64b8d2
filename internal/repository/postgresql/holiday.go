package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

const listHolidaysQuery = `
		SELECT id, date, office_code, description
		FROM holidays
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, office_code NULLS FIRST
	`

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) calendar.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// ListHolidays implements calendar.HolidayRepository.
func (r *holidayRepositoryImpl) ListHolidays(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
	if to.Before(from) {
		return nil, calendar.ErrInvalidHolidayRange
	}

	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, listHolidaysQuery, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []calendar.Holiday
	for rows.Next() {
		var (
			h          calendar.Holiday
			officeCode sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.Date, &officeCode, &h.Description); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		h.OfficeCode = nullString(officeCode)
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holidays: %w", err)
	}

	return holidays, nil
}
