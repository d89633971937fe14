package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses internal whitespace
// runs into single spaces.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeEmail lowercases the address so duplicate detection and the
// uniqueness index treat User@X and user@x as the same customer.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePromoCode uppercases the code; promo lookup is
// case-insensitive.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var regexMeta = regexp.MustCompile(`[.^$|?*+()\[\]{}\\]`)

// EscapeRegex neutralizes regex metacharacters in user-supplied search
// terms before they reach a MongoDB $regex query.
func EscapeRegex(s string) string {
	return regexMeta.ReplaceAllString(s, `\$0`)
}
