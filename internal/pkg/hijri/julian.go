package hijri

// Epoch constants for the tabular (Kuwaiti) Islamic calendar.
const (
	gregorianJDOffset = 1721119
	islamicEpochJD    = 1948440
	islamicCycleDays  = 10631 // days in a 30-year cycle
)

// floorDiv divides rounding toward negative infinity. Go's "/" truncates
// toward zero, which gives the wrong day for dates before the epochs.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// GregorianToJulianDay returns the Julian Day Number of a proleptic Gregorian
// calendar date. Month is 1-12.
func GregorianToJulianDay(year, month, day int) int {
	a := floorDiv(14-month, 12)
	y := year - a
	m := month + 12*a - 3

	return day +
		floorDiv(153*m+2, 5) +
		365*y +
		floorDiv(y, 4) -
		floorDiv(y, 100) +
		floorDiv(y, 400) +
		gregorianJDOffset
}

// JulianDayToGregorian is the inverse of GregorianToJulianDay.
func JulianDayToGregorian(jd int) (year, month, day int) {
	a := jd + 32044
	b := floorDiv(4*a+3, 146097)
	c := a - floorDiv(146097*b, 4)
	d := floorDiv(4*c+3, 1461)
	e := c - floorDiv(1461*d, 4)
	m := floorDiv(5*e+2, 153)

	day = e - floorDiv(153*m+2, 5) + 1
	month = m + 3 - 12*floorDiv(m, 10)
	year = 100*b + d - 4800 + floorDiv(m, 10)
	return year, month, day
}

// JulianDayToHijri converts a Julian Day Number to raw tabular Hijri
// components. No drift correction or clamping is applied here.
func JulianDayToHijri(jd int) (year, month, day int) {
	l := jd - islamicEpochJD + 10632
	n := floorDiv(l-1, islamicCycleDays)
	l = l - islamicCycleDays*n + 354

	j := floorDiv(10985-l, 5316)*floorDiv(50*l, 17719) +
		floorDiv(l, 5670)*floorDiv(43*l, 15238)

	l = l -
		floorDiv(30-j, 15)*floorDiv(17719*j, 50) -
		floorDiv(j, 16)*floorDiv(15238*j, 43) +
		29

	month = floorDiv(24*l, 709)
	day = l - floorDiv(709*month, 24)
	year = 30*n + j - 30
	return year, month, day
}

// HijriToJulianDay returns the Julian Day Number of a tabular Hijri date.
// It is the exact inverse of JulianDayToHijri for in-range components.
func HijriToJulianDay(year, month, day int) int {
	return floorDiv(11*year+3, 30) +
		354*year +
		30*month -
		floorDiv(month-1, 2) +
		day +
		islamicEpochJD - 385
}
