package fixtures

import (
	"time"

	"github.com/aqlhr/aqlhr-backend-go/internal/domain/holiday"
)

// ==========================================
// SAUDI PUBLIC HOLIDAYS
// ==========================================

// SaudiHoliday is one entry of the hand-maintained official holiday list.
// Religious dates follow the Umm al-Qura announcements and must be updated
// each year.
type SaudiHoliday struct {
	Name      string
	NameAr    string
	Date      string // YYYY-MM-DD
	HijriDate string
	Category  holiday.Category
}

var saudiHolidays = []SaudiHoliday{
	// 2024
	{Name: "Founding Day", NameAr: "يوم التأسيس", Date: "2024-02-22", HijriDate: "12 Sha'ban 1445", Category: holiday.CategoryNational},
	{Name: "Eid al-Fitr", NameAr: "عيد الفطر", Date: "2024-04-10", HijriDate: "1 Shawwal 1445", Category: holiday.CategoryReligious},
	{Name: "Eid al-Adha", NameAr: "عيد الأضحى", Date: "2024-06-16", HijriDate: "10 Dhu al-Hijjah 1445", Category: holiday.CategoryReligious},
	{Name: "Saudi National Day", NameAr: "اليوم الوطني السعودي", Date: "2024-09-23", HijriDate: "20 Rabi' al-awwal 1446", Category: holiday.CategoryNational},

	// 2025
	{Name: "Founding Day", NameAr: "يوم التأسيس", Date: "2025-02-22", HijriDate: "23 Sha'ban 1446", Category: holiday.CategoryNational},
	{Name: "Eid al-Fitr", NameAr: "عيد الفطر", Date: "2025-03-30", HijriDate: "1 Shawwal 1446", Category: holiday.CategoryReligious},
	{Name: "Arafat Day", NameAr: "يوم عرفة", Date: "2025-06-05", HijriDate: "9 Dhu al-Hijjah 1446", Category: holiday.CategoryReligious},
	{Name: "Eid al-Adha", NameAr: "عيد الأضحى", Date: "2025-06-06", HijriDate: "10 Dhu al-Hijjah 1446", Category: holiday.CategoryReligious},
	{Name: "Saudi National Day", NameAr: "اليوم الوطني السعودي", Date: "2025-09-23", HijriDate: "1 Rabi' al-thani 1447", Category: holiday.CategoryNational},

	// 2026
	{Name: "Founding Day", NameAr: "يوم التأسيس", Date: "2026-02-22", HijriDate: "5 Ramadan 1447", Category: holiday.CategoryNational},
	{Name: "Eid al-Fitr", NameAr: "عيد الفطر", Date: "2026-03-20", HijriDate: "1 Shawwal 1447", Category: holiday.CategoryReligious},
	{Name: "Arafat Day", NameAr: "يوم عرفة", Date: "2026-05-26", HijriDate: "9 Dhu al-Hijjah 1447", Category: holiday.CategoryReligious},
	{Name: "Eid al-Adha", NameAr: "عيد الأضحى", Date: "2026-05-27", HijriDate: "10 Dhu al-Hijjah 1447", Category: holiday.CategoryReligious},
	{Name: "Saudi National Day", NameAr: "اليوم الوطني السعودي", Date: "2026-09-23", HijriDate: "11 Rabi' al-thani 1448", Category: holiday.CategoryNational},
}

// SaudiHolidays returns a copy of the official holiday list, ordered by date.
func SaudiHolidays() []SaudiHoliday {
	out := make([]SaudiHoliday, len(saudiHolidays))
	copy(out, saudiHolidays)
	return out
}

// SaudiHolidaysInYear returns the official holidays of one Gregorian year.
func SaudiHolidaysInYear(year int) []SaudiHoliday {
	var out []SaudiHoliday
	for _, h := range saudiHolidays {
		if h.GregorianDate().Year() == year {
			out = append(out, h)
		}
	}
	return out
}

// GregorianDate parses Date. The list is static, so a parse failure is a bug
// in this file and panics in tests.
func (h SaudiHoliday) GregorianDate() time.Time {
	t, err := time.Parse("2006-01-02", h.Date)
	if err != nil {
		panic("fixtures: bad holiday date " + h.Date)
	}
	return t
}

// DefaultHolidaysFor builds the built-in holiday rows seeded for a company.
// IDs are left empty for the repository to assign.
func DefaultHolidaysFor(companyID string) []holiday.Holiday {
	out := make([]holiday.Holiday, 0, len(saudiHolidays))
	for _, h := range saudiHolidays {
		out = append(out, holiday.Holiday{
			CompanyID: companyID,
			Name:      h.Name,
			NameAr:    h.NameAr,
			Date:      h.GregorianDate(),
			HijriDate: h.HijriDate,
			Category:  h.Category,
			Recurring: false,
			BuiltIn:   true,
		})
	}
	return out
}
