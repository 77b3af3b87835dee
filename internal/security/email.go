package security

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidEmail is returned for addresses that fail the format check.
var ErrInvalidEmail = errors.New("invalid email address")

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether email has a plausible address format.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NormalizeEmail trims and lower-cases an address and validates the result.
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !IsValidEmail(normalized) {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}
