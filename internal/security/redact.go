// Package security masks credentials before they reach logs or the console.
package security

import (
	"regexp"
	"strings"
)

// sensitivePatterns match credentials that end up inside error strings:
// key=value pairs, Telegram bot URLs, Kite authorization headers and
// passwords embedded in URLs.
var sensitivePatterns = []struct {
	re   *regexp.Regexp
	keep int // leading submatch kept verbatim
}{
	{regexp.MustCompile(`(?i)((?:api[_-]?key|access[_-]?token|bot[_-]?token|password|secret)[=:]\s*)["']?([^\s"'&]+)`), 1},
	{regexp.MustCompile(`(/bot)(\d{5,}:[A-Za-z0-9_-]{20,})`), 1},
	{regexp.MustCompile(`(?i)(token\s+[A-Za-z0-9]+:)([A-Za-z0-9]{8,})`), 1},
	{regexp.MustCompile(`(://[^/\s:@]+:)([^@\s/]+)(@)`), 1},
}

// MaskCredential masks a credential, keeping a few characters at each end
// of long values.
func MaskCredential(value string) string {
	if len(value) == 0 {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	if len(value) <= 8 {
		return value[:2] + strings.Repeat("*", len(value)-2)
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// MaskSensitive masks every credential found in input.
func MaskSensitive(input string) string {
	result := input
	for _, p := range sensitivePatterns {
		result = p.re.ReplaceAllStringFunc(result, func(match string) string {
			sub := p.re.FindStringSubmatch(match)
			if len(sub) <= p.keep+1 {
				return MaskCredential(match)
			}
			masked := strings.Join(sub[1:p.keep+1], "") + MaskCredential(sub[p.keep+1])
			return masked + strings.Join(sub[p.keep+2:], "")
		})
	}
	return result
}

// ContainsSensitiveData reports whether input holds anything MaskSensitive would mask.
func ContainsSensitiveData(input string) bool {
	for _, p := range sensitivePatterns {
		if p.re.MatchString(input) {
			return true
		}
	}
	return false
}

type redactedError struct {
	err error
	msg string
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// Redact returns err with credentials masked in its message. errors.Is and
// errors.As still see the wrapped chain.
func Redact(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !ContainsSensitiveData(msg) {
		return err
	}
	return &redactedError{err: err, msg: MaskSensitive(msg)}
}
