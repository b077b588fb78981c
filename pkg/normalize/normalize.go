// Package normalize parses the free-text date, time, age, and name fields of
// the source feed into canonical values. The feed is hand-maintained, so every
// parser here is tolerant of partial or missing input; only the date is
// required, because the canonical timestamp cannot exist without it.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/recoilapp/recoil/pkg/errors"
)

// CanonicalTimeLayout is the layout of every canonical date-time produced by
// this package. The time component defaults to midnight when unknown.
const CanonicalTimeLayout = "2006-01-02T15:04:05"

var (
	dateRe     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)
	monthsRe   = regexp.MustCompile(`^(\d+) months`)
	clockRe    = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2}) ([ap])\.m`)
	hourOnlyRe = regexp.MustCompile(`(?i)^(\d{1,2}) ([ap])`)

	titleCaser = cases.Title(language.AmericanEnglish)
)

// ParseAge parses an age field. Whole years arrive as plain integers; infants
// are reported as "<N> months" and come back as a fraction of a year. Anything
// else parses to 0, which the feed uses interchangeably with "unknown".
func ParseAge(text string) float64 {
	text = strings.TrimSpace(text)

	if n, err := strconv.Atoi(text); err == nil {
		return float64(n)
	}

	if m := monthsRe.FindStringSubmatch(text); m != nil {
		months, _ := strconv.ParseFloat(m[1], 64)
		return months / 12
	}

	return 0
}

// ParseDateTime combines a feed date ("M/D/YYYY") and an optional feed time
// ("H:MM a.m." or "H p.m.") into one canonical date-time string. A missing or
// unparseable date is a caller error; any unrecognized time format is treated
// as "time unknown" and resolves to midnight.
func ParseDateTime(dateText, timeText string) (string, error) {
	m := dateRe.FindStringSubmatch(dateText)
	if m == nil {
		return "", errors.NewMalformedInputError(0, "Date", dateText)
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", errors.NewMalformedInputError(0, "Date", dateText)
	}

	hour, minute := parseClock(timeText)

	dt := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	return dt.Format(CanonicalTimeLayout), nil
}

// parseClock extracts (hour24, minute) from a feed time. Both feed shapes
// carry a 12-hour clock with an a.m./p.m. suffix.
func parseClock(timeText string) (int, int) {
	if m := clockRe.FindStringSubmatch(timeText); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		am := strings.EqualFold(m[3], "a")
		return To24Hour(hour, am), minute
	}

	if m := hourOnlyRe.FindStringSubmatch(timeText); m != nil {
		hour, _ := strconv.Atoi(m[1])
		am := strings.EqualFold(m[2], "a")
		return To24Hour(hour, am), 0
	}

	return 0, 0
}

// To24Hour converts a 12-hour clock reading to a 24-hour one using the rule
// hour24 = hour if am else (hour+12) mod 24. The rule mishandles the noon and
// midnight readings (12 a.m. stays 12, 12 p.m. wraps to 0); it is kept intact
// for parity with the historical data already in the store. Isolated here so
// a corrected conversion can be swapped in and tested independently.
func To24Hour(hour int, am bool) int {
	if am {
		return hour
	}
	return (hour + 12) % 24
}

// CleanName tidies a victim name: collapses runs of whitespace and converts
// all-caps entries (common in police blotters) to title case. Mixed-case
// names pass through untouched.
func CleanName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return s
	}

	if s == strings.ToUpper(s) && s != strings.ToLower(s) {
		return titleCaser.String(strings.ToLower(s))
	}
	return s
}

// FormatCoordinate renders a coordinate for log output.
func FormatCoordinate(v *float64) string {
	if v == nil {
		return "<none>"
	}
	return fmt.Sprintf("%.6f", *v)
}
