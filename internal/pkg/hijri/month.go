package hijri

import "strings"

// Lang selects the display language for month names and formatted dates.
type Lang string

const (
	LangArabic  Lang = "ar"
	LangEnglish Lang = "en"
)

// ArabicMonthNames is indexed by month number - 1 (0 = Muharram).
var ArabicMonthNames = [12]string{
	"محرم",
	"صفر",
	"ربيع الأول",
	"ربيع الآخر",
	"جمادى الأولى",
	"جمادى الآخرة",
	"رجب",
	"شعبان",
	"رمضان",
	"شوال",
	"ذو القعدة",
	"ذو الحجة",
}

// EnglishMonthNames is indexed by month number - 1 (0 = Muharram).
var EnglishMonthNames = [12]string{
	"Muharram",
	"Safar",
	"Rabi' al-awwal",
	"Rabi' al-thani",
	"Jumada al-awwal",
	"Jumada al-thani",
	"Rajab",
	"Sha'ban",
	"Ramadan",
	"Shawwal",
	"Dhu al-Qi'dah",
	"Dhu al-Hijjah",
}

// MonthName returns the display name of a Hijri month. Out-of-range months
// are clamped so the result is never empty.
func MonthName(month int, lang Lang) string {
	idx := clamp(month, 1, 12) - 1
	if lang == LangArabic {
		return ArabicMonthNames[idx]
	}
	return EnglishMonthNames[idx]
}

// ParseLang maps a language tag such as "ar", "ar-SA" or "en-US" to a Lang.
// Anything that is not Arabic falls back to English.
func ParseLang(tag string) Lang {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "ar" || strings.HasPrefix(tag, "ar-") || strings.HasPrefix(tag, "ar_") {
		return LangArabic
	}
	return LangEnglish
}
