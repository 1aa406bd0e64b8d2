package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/office"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const getOfficeByCodeQuery = `
		SELECT code, name, latitude, longitude, radius_meters, created_at, updated_at
		FROM offices
		WHERE code = $1
	`

type officeRepositoryImpl struct {
	db *database.DB
}

func NewOfficeRepository(db *database.DB) office.OfficeRepository {
	return &officeRepositoryImpl{db: db}
}

// GetByCode implements office.OfficeRepository.
func (r *officeRepositoryImpl) GetByCode(ctx context.Context, code string) (office.Office, error) {
	q := GetQuerier(ctx, r.db)

	var (
		o        office.Office
		lat, lon sql.NullFloat64
	)
	err := q.QueryRow(ctx, getOfficeByCodeQuery, code).Scan(
		&o.Code, &o.Name, &lat, &lon, &o.RadiusMeters, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return office.Office{}, office.ErrOfficeNotFound
		}
		return office.Office{}, fmt.Errorf("failed to get office: %w", err)
	}

	o.Latitude = nullFloat(lat)
	o.Longitude = nullFloat(lon)
	return o, nil
}
