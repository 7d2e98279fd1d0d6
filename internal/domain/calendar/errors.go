package calendar

import "errors"

var (
	ErrSourceDisabled    = errors.New("authoritative hijri source is disabled")
	ErrSourceUnavailable = errors.New("authoritative hijri source is unavailable")
	ErrInvalidHijriDate  = errors.New("invalid hijri date")
)
