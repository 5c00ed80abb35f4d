package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// ContainerNumberLength is the length of an ISO 6346 container number:
// owner code, category letter, six-digit serial and check digit.
const ContainerNumberLength = 11

var iso6346Pattern = regexp.MustCompile(`^[A-Z]{4}\d{7}$`)

// iso6346LetterValues skips multiples of 11 (11, 22, 33).
var iso6346LetterValues = [26]int{
	10, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 23, 24,
	25, 26, 27, 28, 29, 30, 31, 32, 34, 35, 36, 37, 38,
}

// CleanContainerNumber strips whitespace, upper-cases, truncates to
// ContainerNumberLength and returns the result when it passes the ISO 6346
// check. Any other input yields "".
func CleanContainerNumber(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.ToUpper(cleaned)
	if len(cleaned) > ContainerNumberLength {
		cleaned = cleaned[:ContainerNumberLength]
	}
	if !ValidContainerNumber(cleaned) {
		return ""
	}
	return cleaned
}

// ValidContainerNumber reports whether s is a well-formed ISO 6346 number
// with a correct check digit.
func ValidContainerNumber(s string) bool {
	if !iso6346Pattern.MatchString(s) {
		return false
	}
	return int(s[10]-'0') == CheckDigit(s[:10])
}

// CheckDigit computes the ISO 6346 check digit over the first ten characters
// (owner code, category and serial). It returns -1 for malformed input.
func CheckDigit(prefix string) int {
	if len(prefix) < 10 {
		return -1
	}
	sum := 0
	for i := 0; i < 10; i++ {
		c := prefix[i]
		var v int
		switch {
		case c >= 'A' && c <= 'Z':
			v = iso6346LetterValues[c-'A']
		case c >= '0' && c <= '9':
			v = int(c - '0')
		default:
			return -1
		}
		sum += v << i
	}
	return sum % 11 % 10
}
