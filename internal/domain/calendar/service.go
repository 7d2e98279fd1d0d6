package calendar

import (
	"context"
	"time"

	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/hijri"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/sse"
)

// SSE event names published by the calendar service.
const (
	EventHijriDateChanged = "hijri_date_changed"
	EventHolidaysChanged  = "holidays_changed"
)

type CalendarService interface {
	// Today never fails. When every source is down it returns a placeholder.
	Today(ctx context.Context, req TodayRequest) CalendarResponse
	Convert(ctx context.Context, req ConvertRequest) (HijriDateResponse, error)
	ConvertBatch(ctx context.Context, req BatchConvertRequest) ([]HijriDateResponse, error)
	ToGregorian(ctx context.Context, req ToGregorianRequest) (GregorianDateResponse, error)
	Refresh(ctx context.Context) (RefreshResponse, error)
	SourceStatus(ctx context.Context) SourceStatusResponse
	Subscribe(companyID string) (chan sse.Event, func())
}

// Converter is the local Gregorian to Hijri conversion the service falls
// back to.
type Converter interface {
	FromTime(t time.Time) hijri.Date
}

// AuthoritativeSource returns the official Hijri date for a day.
type AuthoritativeSource interface {
	HijriFor(ctx context.Context, t time.Time) (hijri.Date, error)
	Ping(ctx context.Context) (time.Duration, error)
}
