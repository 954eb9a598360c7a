package evidex

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
	"golang.org/x/text/unicode/norm"
)

// ISO-8601 layouts used for canonical DATE entities, from most to least precise.
const (
	DateLayoutDay   = "2006-01-02"
	DateLayoutMonth = "2006-01"
	DateLayoutYear  = "2006"
)

var punctuationReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "‛", "'",
	"“", `"`, "”", `"`,
	"‐", "-", "‑", "-", "‒", "-", "–", "-", "—", "-",
	".", "",
)

// NormalizeEntityText returns the canonical text for a mention of typ.
// Normalization is exact and model independent: two mentions merge into one
// entity only when this function returns the same string for both.
func NormalizeEntityText(typ EntityType, text string) string {
	if typ == EntityDate {
		if iso, ok := CanonicalDate(text); ok {
			return iso
		}
	}
	return normalizeText(text)
}

// NormalizeEntityPrefix normalizes a partial entity name for prefix lookup.
// Dates are not parsed since a prefix is rarely a complete date.
func NormalizeEntityPrefix(text string) string {
	return normalizeText(text)
}

func normalizeText(text string) string {
	s := norm.NFKC.String(text)
	s = strings.ToLower(s)
	s = punctuationReplacer.Replace(s)
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	return strings.Join(strings.Fields(s), " ")
}

// CanonicalDate converts a date expression to ISO-8601. The result keeps
// only the precision present in the input: a bare year yields "2006" and a
// month with a year yields "2006-01". Returns false when text is not a date.
func CanonicalDate(text string) (string, bool) {
	s := strings.TrimSpace(norm.NFKC.String(text))
	if s == "" {
		return "", false
	}
	if t, err := time.Parse(DateLayoutMonth, s); err == nil {
		return t.Format(DateLayoutMonth), true
	}

	var numbers []string
	var month time.Month
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		tok = strings.ToLower(tok)
		if day, ok := stripOrdinal(tok); ok {
			tok = day
		}
		switch {
		case isDigits(tok):
			numbers = append(numbers, tok)
		case monthNames[tok] != 0:
			month = monthNames[tok]
		}
	}

	if month != 0 {
		return namedMonthDate(numbers, month)
	}

	switch {
	case len(numbers) == 0:
		return "", false
	case len(numbers) == 1:
		// A bare year or yyyymmdd; any other lone number is not a date.
		if len(numbers[0]) == 4 && numbers[0] == s {
			t, err := time.Parse(DateLayoutYear, s)
			if err != nil {
				return "", false
			}
			return t.Format(DateLayoutYear), true
		}
		if len(numbers[0]) != 8 || numbers[0] != s {
			return "", false
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return "", false
	}
	return t.Format(DateLayoutDay), true
}

// namedMonthDate builds a date from a month name and the numbers around
// it: a four-digit year and an optional day of month.
func namedMonthDate(numbers []string, month time.Month) (string, bool) {
	year, day := -1, 0
	for _, n := range numbers {
		v, err := strconv.Atoi(n)
		if err != nil {
			return "", false
		}
		switch {
		case len(n) == 4 && year < 0:
			year = v
		case len(n) <= 2 && day == 0 && v >= 1:
			day = v
		default:
			return "", false
		}
	}
	if year < 0 {
		return "", false
	}
	if day == 0 {
		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format(DateLayoutMonth), true
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month {
		return "", false
	}
	return t.Format(DateLayoutDay), true
}

// stripOrdinal turns "4th" into "4". Only one or two digit days qualify.
func stripOrdinal(tok string) (string, bool) {
	if len(tok) < 3 || len(tok) > 4 {
		return "", false
	}
	digits, suffix := tok[:len(tok)-2], tok[len(tok)-2:]
	switch suffix {
	case "st", "nd", "rd", "th":
	default:
		return "", false
	}
	if !isDigits(digits) {
		return "", false
	}
	return digits, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}
