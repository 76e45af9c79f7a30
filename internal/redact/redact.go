// Package redact removes credentials and personal data from strings before
// they are logged or returned in error responses.
package redact

import "regexp"

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules are applied in order; earlier rules may consume text later ones
// would otherwise match.
var rules = []rule{
	{
		pattern:     regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		replacement: "[REDACTED_JWT]",
	},
	{
		pattern:     regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9_\-.~+/=]+`),
		replacement: "${1}[REDACTED_TOKEN]",
	},
	{
		// user:password section of connection URLs
		pattern:     regexp.MustCompile(`(?i)([a-z][a-z0-9+.-]*://)[^/@\s]+@`),
		replacement: "${1}[REDACTED_CREDENTIAL]@",
	},
	{
		pattern:     regexp.MustCompile(`(?i)(password|passwd|pwd|secret|api[_-]?key|apikey)(\s*[=:]\s*)[^\s&,"']+`),
		replacement: "${1}${2}[REDACTED]",
	},
	{
		pattern:     regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
		replacement: "[REDACTED_EMAIL]",
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
