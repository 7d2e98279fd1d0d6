package holiday

import (
	"context"
	"time"
)

// HolidayRepository - interface for holidays table
type HolidayRepository interface {
	Create(ctx context.Context, h Holiday) (Holiday, error)
	CreateMany(ctx context.Context, holidays []Holiday) (int, error)
	GetByID(ctx context.Context, id string, companyID string) (Holiday, error)
	List(ctx context.Context, companyID string, filter ListHolidaysRequest) ([]Holiday, error)
	GetByDateRange(ctx context.Context, companyID string, from, to time.Time) ([]Holiday, error)
	Update(ctx context.Context, h Holiday) error
	Delete(ctx context.Context, id string, companyID string) error
	DeleteBuiltIn(ctx context.Context, companyID string) error
}
