package response

import (
	"errors"
	"net/http"

	"github.com/aqlhr/aqlhr-backend-go/internal/domain/calendar"
	"github.com/aqlhr/aqlhr-backend-go/internal/domain/holiday"
	"github.com/aqlhr/aqlhr-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Holiday domain errors
	case errors.Is(err, holiday.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, holiday.ErrHolidayExists):
		Conflict(w, "Holiday already exists on this date")
	case errors.Is(err, holiday.ErrBuiltInReadOnly):
		Forbidden(w, "Built-in holidays cannot be modified")
	case errors.Is(err, holiday.ErrCompanyIDRequired):
		Forbidden(w, "Company membership required")

	// Calendar domain errors
	case errors.Is(err, calendar.ErrInvalidHijriDate):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, calendar.ErrSourceDisabled):
		ServiceUnavailable(w, "Umm al-Qura source is disabled")
	case errors.Is(err, calendar.ErrSourceUnavailable):
		ServiceUnavailable(w, "Umm al-Qura source is unavailable")

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
