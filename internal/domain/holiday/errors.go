package holiday

import "errors"

var (
	ErrHolidayNotFound   = errors.New("holiday not found")
	ErrHolidayExists     = errors.New("holiday with this name already exists on this date")
	ErrBuiltInReadOnly   = errors.New("built-in holidays cannot be modified")
	ErrCompanyIDRequired = errors.New("company id is required")
)
