package security

import (
	"regexp"
	"strings"
)

// MaskedValue replaces secret values found in free text.
const MaskedValue = "***MASKED***"

// secretWords mark keys and message fragments that carry credentials.
var secretWords = []string{
	"password",
	"token",
	"key",
	"secret",
	"auth",
	"credential",
	"api_key",
	"access_token",
}

var secretAssignmentPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(secretWords))
	for _, w := range secretWords {
		out = append(out, regexp.MustCompile(`(?i)(`+regexp.QuoteMeta(w)+`[=:]\s*)([^\s,]+)`))
	}
	return out
}()

// MaskSecret hides all but the first and last two characters of value.
func MaskSecret(value string) string {
	runes := []rune(value)
	if len(runes) <= 4 {
		return "***"
	}
	return string(runes[:2]) + "***" + string(runes[len(runes)-2:])
}

// MaskSecretsInText replaces values written as "password=..." or
// "token: ..." with MaskedValue.
func MaskSecretsInText(text string) string {
	lower := strings.ToLower(text)
	for i, w := range secretWords {
		if !strings.Contains(lower, w) {
			continue
		}
		text = secretAssignmentPatterns[i].ReplaceAllString(text, "${1}"+MaskedValue)
	}
	return text
}

// sensitiveKeyWords mark structured log keys whose values are credentials.
// Bare "key" is left out so generic cache or map keys stay readable.
var sensitiveKeyWords = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"credential",
	"api_key",
	"apikey",
	"private_key",
	"authorization",
}

// IsSecretKey reports whether a structured log key names a credential.
func IsSecretKey(key string) bool {
	lower := strings.ToLower(key)
	for _, w := range sensitiveKeyWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
