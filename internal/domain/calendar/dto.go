package calendar

import (
	"time"

	"github.com/aqlhr/aqlhr-backend-go/internal/domain/holiday"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/hijri"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/validator"
)

// Source tells the caller how much to trust a Hijri date.
type Source string

const (
	SourceAuthoritative Source = "authoritative"
	SourceComputed      Source = "computed"
	SourceLastKnown     Source = "last_known"
	SourcePlaceholder   Source = "placeholder"
)

// MaxBatchDates bounds ConvertBatch, one Gregorian leap year of dates.
const MaxBatchDates = 366

type HijriDateResponse struct {
	Gregorian     string `json:"gregorian_date,omitempty"`
	Day           int    `json:"day"`
	Month         string `json:"month"`
	MonthEn       string `json:"month_en"`
	MonthNumber   int    `json:"month_number"`
	Year          int    `json:"year"`
	Formatted     string `json:"formatted"`
	Source        Source `json:"source"`
	Corrected     bool   `json:"corrected"`
	OutsideWindow bool   `json:"outside_window,omitempty"`
}

// NewHijriDateResponse renders d for lang and tags it with its source.
func NewHijriDateResponse(d hijri.Date, lang hijri.Lang, source Source) HijriDateResponse {
	return HijriDateResponse{
		Day:           d.Day,
		Month:         hijri.MonthName(d.Month, hijri.LangArabic),
		MonthEn:       hijri.MonthName(d.Month, hijri.LangEnglish),
		MonthNumber:   d.Month,
		Year:          d.Year,
		Formatted:     d.Format(lang),
		Source:        source,
		Corrected:     d.Corrected(),
		OutsideWindow: d.OutsideWindow,
	}
}

type SaudiHolidayResponse struct {
	Name      string           `json:"name"`
	NameAr    string           `json:"name_ar"`
	Date      string           `json:"date"`
	HijriDate string           `json:"hijri_date"`
	Category  holiday.Category `json:"type"`
}

// CalendarResponse is the "today" bundle.
type CalendarResponse struct {
	GregorianDate    string                    `json:"gregorian_date"`
	HijriDate        HijriDateResponse         `json:"hijri_date"`
	Timezone         string                    `json:"timezone"`
	Holidays         []holiday.HolidayResponse `json:"holidays"`
	SaudiHolidays    []SaudiHolidayResponse    `json:"saudi_holidays"`
	CurrentHijriYear int                       `json:"current_hijri_year"`
	HolidayCount     int                       `json:"holiday_count"`
}

type TodayRequest struct {
	CompanyID string
	Lang      hijri.Lang
}

type ConvertRequest struct {
	Date string     `json:"date"`
	Lang hijri.Lang `json:"lang"`

	ParsedDate time.Time `json:"-"`
}

func (r *ConvertRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if parsed, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	} else {
		r.ParsedDate = parsed
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type BatchConvertRequest struct {
	Dates []string   `json:"dates"`
	Lang  hijri.Lang `json:"lang"`

	ParsedDates []time.Time `json:"-"`
}

func (r *BatchConvertRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Dates) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "dates",
			Message: "dates must contain at least one date",
		})
	}
	if len(r.Dates) > MaxBatchDates {
		errs = append(errs, validator.ValidationError{
			Field:   "dates",
			Message: "dates must not contain more than " + validator.Itoa(MaxBatchDates) + " entries",
		})
	}

	parsed := make([]time.Time, 0, len(r.Dates))
	for i, raw := range r.Dates {
		t, ok := validator.IsValidDate(raw)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "dates[" + validator.Itoa(i) + "]",
				Message: "date must be in YYYY-MM-DD format",
			})
			continue
		}
		parsed = append(parsed, t)
	}

	if len(errs) > 0 {
		return errs
	}

	r.ParsedDates = parsed
	return nil
}

type ToGregorianRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

func (r *ToGregorianRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Year < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be a positive Hijri year",
		})
	}
	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if r.Day < 1 || r.Day > 30 {
		errs = append(errs, validator.ValidationError{
			Field:   "day",
			Message: "day must be between 1 and 30",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type GregorianDateResponse struct {
	Date      string `json:"date"`
	Weekday   string `json:"weekday"`
	HijriDate string `json:"hijri_date"`
}

type SourceStatusResponse struct {
	Enabled   bool       `json:"enabled"`
	Reachable bool       `json:"reachable"`
	LatencyMs int64      `json:"latency_ms"`
	Error     string     `json:"error,omitempty"`
	LastKnown *string    `json:"last_known,omitempty"`
	CheckedAt time.Time  `json:"checked_at"`
	LastSync  *time.Time `json:"last_sync,omitempty"`
}

type RefreshResponse struct {
	HijriDate HijriDateResponse `json:"hijri_date"`
	Changed   bool              `json:"changed"`
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
