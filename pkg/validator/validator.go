package validator

import (
	"regexp"
	"strings"
)

// emailRegex matches the address formats the API accepts. Same shape the
// persistence layer indexes on: local part, optional dot/dash segments,
// domain with a 2-3 letter TLD.
var emailRegex = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// urlRegex matches http or https URLs
var urlRegex = regexp.MustCompile(`^https?://.+`)

// digitsRegex matches digits only
var digitsRegex = regexp.MustCompile(`^\d+$`)

// IsEmail reports whether s is a valid email address
func IsEmail(s string) bool {
	return emailRegex.MatchString(strings.ToLower(strings.TrimSpace(s)))
}

// IsHTTPURL reports whether s is an http(s) URL
func IsHTTPURL(s string) bool {
	return urlRegex.MatchString(strings.TrimSpace(s))
}

// SanitizePhone removes spaces, dashes, dots and parentheses from a phone
// number, keeping a leading plus sign
func SanitizePhone(phone string) string {
	sanitized := strings.TrimSpace(phone)
	plus := strings.HasPrefix(sanitized, "+")
	replacer := strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "", "+", "")
	sanitized = replacer.Replace(sanitized)
	if plus {
		return "+" + sanitized
	}
	return sanitized
}

// IsPhone reports whether the sanitized phone is 8 to 15 digits
// (Guatemalan numbers are 8, international formats go up to 15)
func IsPhone(phone string) bool {
	sanitized := strings.TrimPrefix(SanitizePhone(phone), "+")
	if !digitsRegex.MatchString(sanitized) {
		return false
	}
	return len(sanitized) >= 8 && len(sanitized) <= 15
}
