package office

import "context"

type OfficeRepository interface {
	GetByCode(ctx context.Context, code string) (Office, error)
}
