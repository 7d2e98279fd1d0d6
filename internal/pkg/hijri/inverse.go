package hijri

import (
	"errors"
	"time"
)

var (
	ErrInvalidYear  = errors.New("hijri year must be at least 1")
	ErrInvalidMonth = errors.New("hijri month must be between 1 and 12")
	ErrInvalidDay   = errors.New("hijri day is out of range for the month")
)

// IsLeapYear reports whether a tabular Hijri year has 355 days.
func IsLeapYear(year int) bool {
	r := (14 + 11*year) % 30
	if r < 0 {
		r += 30
	}
	return r < 11
}

// DaysInMonth returns 29 or 30.
func DaysInMonth(year, month int) int {
	nextYear, nextMonth := year, month+1
	if month == 12 {
		nextYear, nextMonth = year+1, 1
	}
	return HijriToJulianDay(nextYear, nextMonth, 1) - HijriToJulianDay(year, month, 1)
}

// ToGregorian converts a tabular Hijri date to midnight UTC of the
// corresponding Gregorian day. Unlike the forward direction it validates its
// input, since a bad Hijri date has no sensible Gregorian equivalent.
//
// year is a raw tabular year. ToGregorian never undoes a Correction: a
// corrected year is indistinguishable from a genuine one, so inverting a
// corrected Date takes its RawYear, not its Year.
func ToGregorian(year, month, day int) (time.Time, error) {
	if year < 1 {
		return time.Time{}, ErrInvalidYear
	}
	if month < 1 || month > 12 {
		return time.Time{}, ErrInvalidMonth
	}
	if day < 1 || day > DaysInMonth(year, month) {
		return time.Time{}, ErrInvalidDay
	}

	gy, gm, gd := JulianDayToGregorian(HijriToJulianDay(year, month, day))
	return time.Date(gy, time.Month(gm), gd, 0, 0, 0, 0, time.UTC), nil
}
