package sanitize

import (
	"net/url"
	"regexp"
	"strings"
)

// maxEmailLength is the RFC 5321 ceiling on a full address.
const maxEmailLength = 254

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail reports whether v has the standard single-@ shape and
// fits the address length ceiling.
func ValidateEmail(v string) bool {
	if len(v) > maxEmailLength {
		return false
	}
	return emailPattern.MatchString(v)
}

// ValidatePhone strips non-digits and accepts 7 to 15 remaining digits,
// the ITU-T E.164 significant-number range.
func ValidatePhone(v string) bool {
	digits := 0
	for _, r := range v {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

// ValidateURL accepts absolute http or https URLs only.
func ValidateURL(v string) bool {
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// validatorFor maps a field name to its semantic check. Returned
// functions yield an empty string on success and a human-readable message
// on failure.
func validatorFor(field string) func(string) string {
	name := strings.ToLower(field)
	switch {
	case strings.Contains(name, "email"):
		return func(v string) string {
			if !ValidateEmail(v) {
				return "invalid email address"
			}
			return ""
		}
	case strings.Contains(name, "phone"), strings.Contains(name, "tel"):
		return func(v string) string {
			if !ValidatePhone(v) {
				return "invalid phone number"
			}
			return ""
		}
	case strings.Contains(name, "url"), strings.Contains(name, "website"), strings.Contains(name, "link"):
		return func(v string) string {
			if !ValidateURL(v) {
				return "invalid url"
			}
			return ""
		}
	}
	return nil
}
