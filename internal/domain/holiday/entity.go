package holiday

import "time"

type Category string

const (
	CategoryNational  Category = "national"
	CategoryReligious Category = "religious"
	CategoryCultural  Category = "cultural"
	CategoryCompany   Category = "company"
)

// AllCategories returns every holiday category
func AllCategories() []Category {
	return []Category{
		CategoryNational,
		CategoryReligious,
		CategoryCultural,
		CategoryCompany,
	}
}

func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// Holiday is a day off for a company. Built-in Saudi holidays are copied into
// each company's calendar the first time it is read.
type Holiday struct {
	ID        string
	CompanyID string
	Name      string
	NameAr    string
	Date      time.Time // midnight UTC of the Gregorian day
	HijriDate string
	Category  Category
	Recurring bool // same Gregorian month/day every year
	BuiltIn   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccursOn reports whether the holiday falls on the Gregorian day of t.
func (h Holiday) OccursOn(t time.Time) bool {
	y, m, d := t.Date()
	_, hm, hd := h.InYear(y).Date()
	if !h.Recurring {
		hy, _, _ := h.Date.Date()
		return y == hy && m == hm && d == hd
	}
	return m == hm && d == hd
}

// InYear returns the holiday's date within year. Non-recurring holidays keep
// their own date. A recurring Feb 29 falls on Feb 28 in common years.
func (h Holiday) InYear(year int) time.Time {
	if !h.Recurring {
		return h.Date
	}
	month, day := h.Date.Month(), h.Date.Day()
	if month == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
