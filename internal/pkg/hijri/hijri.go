// Package hijri converts Gregorian dates to the tabular Islamic (Hijri)
// calendar and back, using a Julian Day Number as the intermediate.
//
// The arithmetic is the Kuwaiti algorithm. It is an approximation of the
// Umm al-Qura calendar and can differ from it by a day or two around month
// boundaries; callers that need the official date should prefer an
// authoritative source and treat this package as the fallback.
//
// Basic usage:
//
//	d := hijri.FromGregorian(2025, 3, 30)
//	d.Format(hijri.LangEnglish) // "30 Ramadan 1446 AH"
//
// All functions are pure and safe for concurrent use.
package hijri

import (
	"fmt"
	"time"
)

// Date is a Hijri calendar date produced by a Converter.
type Date struct {
	Day       int    `json:"day"`
	Month     int    `json:"month_number"`
	MonthName string `json:"month"`
	Year      int    `json:"year"`

	// RawYear is the year before any correction was applied.
	RawYear int `json:"raw_year"`
	// Correction names the correction that changed Year, if any.
	Correction string `json:"correction,omitempty"`
	// Clamped is set when day or month had to be forced into range.
	Clamped bool `json:"clamped,omitempty"`
	// OutsideWindow is set when RawYear falls outside the converter's
	// validity window.
	OutsideWindow bool `json:"outside_window,omitempty"`
}

// Corrected reports whether a drift correction changed the year.
func (d Date) Corrected() bool {
	return d.Correction != ""
}

// String returns the date as YYYY-MM-DD in Hijri components.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Format renders the date for display, e.g. "15 محرم 1446هـ" or
// "15 Muharram 1446 AH".
func (d Date) Format(lang Lang) string {
	if lang == LangArabic {
		return fmt.Sprintf("%d %s %dهـ", d.Day, MonthName(d.Month, LangArabic), d.Year)
	}
	return fmt.Sprintf("%d %s %d AH", d.Day, MonthName(d.Month, LangEnglish), d.Year)
}

// Window is an inclusive range of raw Hijri years.
type Window struct {
	From int
	To   int
}

// Contains reports whether year is inside w.
func (w Window) Contains(year int) bool {
	return year >= w.From && year <= w.To
}

// ValidityWindow is the range covered by the published Umm al-Qura tables
// (1356-1500 AH, roughly 1937-2077 CE).
var ValidityWindow = Window{From: 1356, To: 1500}

// Converter turns Gregorian dates into Hijri dates. The zero value applies no
// corrections and uses ValidityWindow.
type Converter struct {
	corrections []Correction
	window      Window
	hasWindow   bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithCorrections replaces the correction table.
func WithCorrections(corrections ...Correction) Option {
	return func(c *Converter) {
		c.corrections = append([]Correction(nil), corrections...)
	}
}

// WithWindow sets the validity window reported through Date.OutsideWindow.
func WithWindow(w Window) Option {
	return func(c *Converter) {
		c.window = w
		c.hasWindow = true
	}
}

// NewConverter creates a converter. Without options it applies
// LegacyDriftCorrection, matching FromGregorian.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		corrections: []Correction{LegacyDriftCorrection},
		window:      ValidityWindow,
		hasWindow:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultConverter = NewConverter()

// FromGregorian converts a Gregorian calendar date with the default converter.
// It never fails: out-of-range input degrades to clamped output.
func FromGregorian(year, month, day int) Date {
	return defaultConverter.Convert(year, month, day)
}

// FromTime converts the calendar date of t in t's own location. Callers
// normalize t to the desired timezone first.
func FromTime(t time.Time) Date {
	return defaultConverter.FromTime(t)
}

// FromTime converts the calendar date of t in t's own location.
func (c *Converter) FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return c.Convert(y, int(m), d)
}

// Convert converts a Gregorian year, month (1-12) and day (1-31).
func (c *Converter) Convert(year, month, day int) Date {
	jd := GregorianToJulianDay(year, month, day)
	rawYear, rawMonth, rawDay := JulianDayToHijri(jd)

	out := Date{
		Year:    rawYear,
		RawYear: rawYear,
	}

	for _, corr := range c.corrections {
		if corr.Applies(rawYear) {
			out.Year = rawYear + corr.Offset
			out.Correction = corr.Name
			break
		}
	}

	out.Month = clamp(rawMonth, 1, 12)
	out.Day = clamp(rawDay, 1, 30)
	out.Clamped = out.Month != rawMonth || out.Day != rawDay
	out.MonthName = ArabicMonthNames[out.Month-1]

	window := ValidityWindow
	if c.hasWindow {
		window = c.window
	}
	out.OutsideWindow = !window.Contains(rawYear)

	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
