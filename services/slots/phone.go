package slots

import (
	"regexp"
	"strings"
)

var (
	phonePattern       = regexp.MustCompile(`\+?\d[\d\-\s()]{6,}\d`)
	countryCodePattern = regexp.MustCompile(`\+\d{1,3}`)
	nonDigits          = regexp.MustCompile(`\D`)
	isoDate            = regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`)
)

// nationalDigits is the subscriber number length assumed when a country code
// is written without a separator, e.g. "+919876543210".
const nationalDigits = 10

// minPhoneDigits is the shortest digit run accepted as a phone number.
const minPhoneDigits = 6

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// ParsePhone splits a raw phone string into a "+"-prefixed country code and
// the remaining digits. Without a country code the whole digit run is the
// phone, provided it has at least six digits.
func ParsePhone(raw string) (countryCode, phone string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	if loc := countryCodePattern.FindStringIndex(raw); loc != nil {
		rest := raw[loc[1]:]
		cc := raw[loc[0]:loc[1]]
		if rest != "" && rest[0] >= '0' && rest[0] <= '9' {
			// No separator: the split point is ambiguous, so assume a
			// ten-digit national number when that leaves a 1-3 digit code.
			all := Digits(raw[loc[0]:])
			if n := len(all) - nationalDigits; n >= 1 && n <= 3 {
				return "+" + all[:n], all[n:]
			}
		}
		return cc, Digits(rest)
	}
	digits := Digits(raw)
	if len(digits) >= minPhoneDigits {
		return "", digits
	}
	return "", ""
}

// FindPhone returns the first phone-looking run in text, split into country
// code and digits.
func FindPhone(text string) (countryCode, phone string) {
	text = isoDate.ReplaceAllString(text, " ")
	for _, m := range phonePattern.FindAllString(text, -1) {
		if cc, phone := ParsePhone(m); phone != "" {
			return cc, phone
		}
	}
	return "", ""
}
