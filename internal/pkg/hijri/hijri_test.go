package hijri

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGregorianToJulianDay(t *testing.T) {
	cases := []struct {
		name             string
		year, month, day int
		want             int
	}{
		{"J2000 epoch", 2000, 1, 1, 2451545},
		{"unix epoch", 1970, 1, 1, 2440588},
		{"islamic epoch", 622, 7, 19, 1948440},
		{"national day 2024", 2024, 9, 23, 2460577},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, GregorianToJulianDay(c.year, c.month, c.day))

			y, m, d := JulianDayToGregorian(c.want)
			assert.Equal(t, []int{c.year, c.month, c.day}, []int{y, m, d})
		})
	}
}

func TestFromGregorian_KnownDates(t *testing.T) {
	cases := []struct {
		name             string
		year, month, day int
		wantYear         int
		wantMonth        int
		wantDay          int
	}{
		{"national day 2024", 2024, 9, 23, 1446, 3, 19},
		{"ramadan 30 1446", 2025, 3, 30, 1446, 9, 30},
		{"dhu al-hijjah 9 1446", 2025, 6, 6, 1446, 12, 9},
		{"founding day 2024", 2024, 2, 22, 1445, 8, 12},
		{"eid al-fitr 1445", 2024, 4, 10, 1445, 10, 1},
		{"muharram 1 1441", 2019, 9, 1, 1441, 1, 1},
		{"today", 2026, 10, 19, 1448, 5, 7},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := FromGregorian(c.year, c.month, c.day)
			assert.Equal(t, c.wantYear, got.Year)
			assert.Equal(t, c.wantMonth, got.Month)
			assert.Equal(t, c.wantDay, got.Day)
			assert.Equal(t, ArabicMonthNames[c.wantMonth-1], got.MonthName)
			assert.False(t, got.Corrected())
			assert.False(t, got.Clamped)
			assert.False(t, got.OutsideWindow)
		})
	}
}

// Reference dates from the published holiday table. The tabular calendar is
// allowed to be a day off from Umm al-Qura.
func TestFromGregorian_ReferenceTolerance(t *testing.T) {
	cases := []struct {
		name             string
		year, month, day int
		refYear          int
		refMonth         int
		refDay           int
		tolerance        int
	}{
		{"eid al-fitr 1446", 2025, 3, 30, 1446, 10, 1, 1},
		{"eid al-adha 1446", 2025, 6, 6, 1446, 12, 10, 1},
		{"founding day 1446", 2025, 2, 22, 1446, 8, 23, 1},
		{"eid al-adha 1445", 2024, 6, 16, 1445, 12, 10, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := FromGregorian(c.year, c.month, c.day)
			diff := HijriToJulianDay(got.RawYear, got.Month, got.Day) - HijriToJulianDay(c.refYear, c.refMonth, c.refDay)
			if diff < 0 {
				diff = -diff
			}
			assert.LessOrEqual(t, diff, c.tolerance, "computed %s", got)
		})
	}

	// The holiday table lists Safar for 2024-09-23; only the year and the
	// neighbouring month are checked.
	got := FromGregorian(2024, 9, 23)
	assert.Equal(t, 1446, got.Year)
	assert.Contains(t, []int{2, 3}, got.Month)
}

func TestFromGregorian_DriftCorrectionBoundary(t *testing.T) {
	// 2018-09-10 is 29 Dhu al-Hijjah 1439 in the tabular calendar.
	before := FromGregorian(2018, 9, 10)
	assert.Equal(t, 1439, before.RawYear)
	assert.Equal(t, 1445, before.Year)
	assert.Equal(t, LegacyDriftCorrection.Name, before.Correction)
	assert.True(t, before.Corrected())

	last := FromGregorian(2018, 9, 11)
	assert.Equal(t, 1445, last.Year)
	assert.Equal(t, 12, last.Month)
	assert.Equal(t, 30, last.Day)

	first := FromGregorian(2018, 9, 12)
	assert.Equal(t, 1440, first.RawYear)
	assert.Equal(t, 1440, first.Year)
	assert.Equal(t, 1, first.Month)
	assert.Equal(t, 1, first.Day)
	assert.False(t, first.Corrected())

	after := FromGregorian(2019, 9, 1)
	assert.Equal(t, 1441, after.RawYear)
	assert.Equal(t, 1441, after.Year)
}

func TestConverter_WithoutCorrections(t *testing.T) {
	c := NewConverter(WithCorrections())

	got := c.Convert(2018, 9, 10)
	assert.Equal(t, 1439, got.Year)
	assert.False(t, got.Corrected())

	got = c.Convert(2000, 1, 1)
	assert.Equal(t, 1420, got.Year)
	assert.Equal(t, 9, got.Month)
	assert.Equal(t, 24, got.Day)
}

func TestConverter_ZeroValue(t *testing.T) {
	var c Converter
	got := c.Convert(2000, 1, 1)
	assert.Equal(t, 1420, got.Year)
	assert.False(t, got.OutsideWindow)
}

func TestConverter_ValidityWindow(t *testing.T) {
	got := FromGregorian(1900, 3, 1)
	assert.Equal(t, 1317, got.RawYear)
	assert.True(t, got.OutsideWindow)

	got = FromGregorian(2100, 12, 31)
	assert.Equal(t, 1524, got.RawYear)
	assert.True(t, got.OutsideWindow)

	narrow := NewConverter(WithWindow(Window{From: 1445, To: 1446}))
	assert.False(t, narrow.Convert(2025, 1, 1).OutsideWindow)
	assert.True(t, narrow.Convert(2026, 10, 19).OutsideWindow)
}

func TestFromGregorian_Deterministic(t *testing.T) {
	first := FromGregorian(2025, 6, 6)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, FromGregorian(2025, 6, 6))
	}
}

func TestFromGregorian_RangeInvariant(t *testing.T) {
	start := GregorianToJulianDay(1900, 1, 1)
	end := GregorianToJulianDay(2100, 12, 31)

	for jd := start; jd <= end; jd++ {
		y, m, d := JulianDayToGregorian(jd)
		got := FromGregorian(y, m, d)

		if got.Day < 1 || got.Day > 30 || got.Month < 1 || got.Month > 12 {
			t.Fatalf("%04d-%02d-%02d out of range: %+v", y, m, d, got)
		}
		if got.Clamped {
			t.Fatalf("%04d-%02d-%02d needed clamping: %+v", y, m, d, got)
		}
		if got.MonthName != ArabicMonthNames[got.Month-1] {
			t.Fatalf("%04d-%02d-%02d month name %q does not match month %d", y, m, d, got.MonthName, got.Month)
		}
	}
}

func TestFromGregorian_Monotonic(t *testing.T) {
	c := NewConverter(WithCorrections())
	start := GregorianToJulianDay(1900, 1, 1)
	end := GregorianToJulianDay(2100, 12, 31)

	py, pm, pd := JulianDayToGregorian(start)
	prev := c.Convert(py, pm, pd)
	for jd := start + 1; jd <= end; jd++ {
		y, m, d := JulianDayToGregorian(jd)
		cur := c.Convert(y, m, d)

		sameMonth := cur.Year == prev.Year && cur.Month == prev.Month && cur.Day == prev.Day+1
		nextMonth := cur.Day == 1 && cur.Year == prev.Year && cur.Month == prev.Month+1
		nextYear := cur.Day == 1 && cur.Month == 1 && prev.Month == 12 && cur.Year == prev.Year+1
		if !sameMonth && !nextMonth && !nextYear {
			t.Fatalf("%04d-%02d-%02d: %s does not follow %s", y, m, d, cur, prev)
		}
		prev = cur
	}
}

func TestFromGregorian_NoPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		for year := -500; year <= 4000; year += 3 {
			for month := 1; month <= 12; month++ {
				for _, day := range []int{1, 15, 28, 31} {
					got := FromGregorian(year, month, day)
					if got.Month < 1 || got.Month > 12 || got.Day < 1 || got.Day > 30 {
						t.Fatalf("%d-%d-%d out of range: %+v", year, month, day, got)
					}
				}
			}
		}
	})

	// Nonsense input degrades rather than failing.
	assert.NotPanics(t, func() {
		got := FromGregorian(0, 0, 0)
		assert.NotEmpty(t, got.MonthName)
	})
}

func TestFromTime_UsesLocation(t *testing.T) {
	riyadh := time.FixedZone("Asia/Riyadh", 3*60*60)
	// 22:30 UTC on 29 March is already 30 March in Riyadh.
	instant := time.Date(2025, 3, 29, 22, 30, 0, 0, time.UTC)

	assert.Equal(t, 29, FromTime(instant).Day)
	assert.Equal(t, 30, FromTime(instant.In(riyadh)).Day)
}

func TestToGregorian(t *testing.T) {
	cases := []struct {
		name             string
		year, month, day int
		want             string
	}{
		{"eid al-fitr 1446", 1446, 10, 1, "2025-03-31"},
		{"eid al-adha 1447", 1447, 12, 10, "2026-05-27"},
		{"epoch", 1, 1, 1, "0622-07-19"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ToGregorian(c.year, c.month, c.day)
			require.NoError(t, err)
			assert.Equal(t, c.want, got.Format("2006-01-02"))
		})
	}
}

func TestToGregorian_Invalid(t *testing.T) {
	_, err := ToGregorian(0, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidYear)

	_, err = ToGregorian(1446, 13, 1)
	assert.ErrorIs(t, err, ErrInvalidMonth)

	_, err = ToGregorian(1446, 2, 30)
	assert.ErrorIs(t, err, ErrInvalidDay)

	_, err = ToGregorian(1446, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidDay)
}

func TestRoundTrip(t *testing.T) {
	c := NewConverter(WithCorrections())
	start := GregorianToJulianDay(1990, 1, 1)
	end := GregorianToJulianDay(2060, 12, 31)

	for jd := start; jd <= end; jd += 13 {
		y, m, d := JulianDayToGregorian(jd)
		h := c.Convert(y, m, d)

		back, err := ToGregorian(h.Year, h.Month, h.Day)
		require.NoError(t, err)
		require.Equal(t, time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), back)
	}
}

func TestRoundTrip_CorrectedDateUsesRawYear(t *testing.T) {
	h := FromGregorian(2018, 9, 10)
	require.True(t, h.Corrected())
	require.Equal(t, 1445, h.Year)

	back, err := ToGregorian(h.RawYear, h.Month, h.Day)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2018, time.September, 10, 0, 0, 0, 0, time.UTC), back)

	shifted, err := ToGregorian(h.Year, h.Month, h.Day)
	require.NoError(t, err)
	assert.Equal(t, 2024, shifted.Year())
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 30, DaysInMonth(1446, 1))
	assert.Equal(t, 29, DaysInMonth(1446, 2))
	assert.Equal(t, 30, DaysInMonth(1445, 12))
	assert.Equal(t, 29, DaysInMonth(1446, 12))

	assert.True(t, IsLeapYear(1445))
	assert.False(t, IsLeapYear(1446))
}

func TestFormat(t *testing.T) {
	d := FromGregorian(2025, 3, 30)
	assert.Equal(t, "30 Ramadan 1446 AH", d.Format(LangEnglish))
	assert.Equal(t, "30 رمضان 1446هـ", d.Format(LangArabic))
	assert.Equal(t, "1446-09-30", d.String())
}

func TestParseLang(t *testing.T) {
	assert.Equal(t, LangArabic, ParseLang("ar"))
	assert.Equal(t, LangArabic, ParseLang("ar-SA"))
	assert.Equal(t, LangArabic, ParseLang(" AR "))
	assert.Equal(t, LangEnglish, ParseLang("en-US"))
	assert.Equal(t, LangEnglish, ParseLang(""))
	assert.Equal(t, LangEnglish, ParseLang("arabic-ish"))
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "Muharram", MonthName(1, LangEnglish))
	assert.Equal(t, "ذو الحجة", MonthName(12, LangArabic))
	assert.Equal(t, "Dhu al-Hijjah", MonthName(99, LangEnglish))
	assert.Equal(t, "محرم", MonthName(-3, LangArabic))
}
