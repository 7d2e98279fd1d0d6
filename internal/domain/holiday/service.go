package holiday

import (
	"context"
	"io"
	"time"
)

type HolidayService interface {
	List(ctx context.Context, companyID string, req ListHolidaysRequest) ([]HolidayResponse, error)
	Upcoming(ctx context.Context, companyID string, from time.Time, limit int) ([]HolidayResponse, error)
	Get(ctx context.Context, companyID string, id string) (HolidayResponse, error)
	Create(ctx context.Context, companyID string, req CreateHolidayRequest) (HolidayResponse, error)
	Update(ctx context.Context, companyID string, req UpdateHolidayRequest) error
	Delete(ctx context.Context, companyID string, id string) error
	IsHoliday(ctx context.Context, companyID string, date time.Time) (CheckHolidayResponse, error)
	Reseed(ctx context.Context, companyID string) (ReseedResponse, error)
	Export(ctx context.Context, companyID string, year int, w io.Writer) error
}
