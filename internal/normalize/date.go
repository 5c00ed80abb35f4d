package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"bkcnorm/internal/domain"
)

// DateLayout is the canonical output layout, DD/MM/YYYY.
const DateLayout = "02/01/2006"

var (
	dottedDatePattern    = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}`)
	yearFirstDatePattern = regexp.MustCompile(`^\d{4}[-/.]\d{1,2}[-/.]\d{1,2}`)
	numericDatePattern   = regexp.MustCompile(`^(\d{1,2})[.\- ](\d{1,2})[.\- ](\d{2,4})\b`)
	ordinalSuffix        = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)
	ofWord               = regexp.MustCompile(`(?i)\bof\b`)
)

var dayFirstOptions = []dateparse.ParserOption{
	dateparse.PreferMonthFirst(false),
	dateparse.RetryAmbiguousDateWithSwap(true),
}

// dayFirstLayouts catch what the general parser rejects. Month-first numeric
// layouts come last so day-first always wins when both are valid.
var dayFirstLayouts = []string{
	"2/1/2006",
	"2 Jan 2006",
	"2-Jan-2006",
	"2/Jan/2006",
	"2Jan2006",
	"2 January 2006",
	"2-January-2006",
	"Mon 2 Jan 2006",
	"Monday 2 January 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2/1/06",
	"2 Jan 06",
	"2-Jan-06",
	"2/Jan/06",
	"2Jan06",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 3:04 PM",
	"2 Jan 2006 15:04",
	"2 Jan 2006 3:04 PM",
	"2 January 2006 3:04 PM",
	"2-Jan-2006 15:04",
	"20060102",
	"1/2/2006",
	"1/2/06",
}

var yearFirstLayouts = []string{
	"2006-1-2",
}

// NormalizeDate converts a free-form date to DD/MM/YYYY.
//
// General parsing prefers day-first, so "01/02/2021" is the 1st of February,
// and swaps day and month when the month would be out of range
// ("08/27/2021"). Strings starting with DD.DD.DDDD that do not parse as a
// calendar date have the whole string split on dots, reversed and joined with
// "/". Strings starting with a year (YYYY-M-D, YYYY/M/D or YYYY.M.D) are parsed
// year-first. Anything else yields "" and an error wrapping
// domain.ErrUnparseableDate; the returned string is always safe to store.
func NormalizeDate(raw string) (string, error) {
	s := cleanDate(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty value", domain.ErrUnparseableDate)
	}

	if t, ok := parseDayFirst(s); ok {
		return t.Format(DateLayout), nil
	}

	if dottedDatePattern.MatchString(s) {
		parts := strings.Split(s, ".")
		for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
			parts[i], parts[j] = parts[j], parts[i]
		}
		return strings.Join(parts, "/"), nil
	}

	if m := yearFirstDatePattern.FindString(s); m != "" {
		m = strings.NewReplacer("/", "-", ".", "-").Replace(m)
		for _, layout := range yearFirstLayouts {
			if t, err := time.Parse(layout, m); err == nil {
				return t.Format(DateLayout), nil
			}
		}
	}

	return "", fmt.Errorf("%w: %q", domain.ErrUnparseableDate, raw)
}

func parseDayFirst(s string) (time.Time, bool) {
	// Only slash-separated numeric dates honor the day-first preference.
	slashed := numericDatePattern.ReplaceAllString(s, "$1/$2/$3")

	if t, err := dateparse.ParseIn(slashed, time.UTC, dayFirstOptions...); err == nil {
		return t, true
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, slashed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func cleanDate(raw string) string {
	s := strings.ReplaceAll(raw, ",", " ")
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = ofWord.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
