// Package redact removes credentials, provider API keys, SQL and file paths
// from strings before they are logged.
package redact

import (
	"regexp"
)

// Placeholders substituted for redacted content.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedStackPlaceholder      = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules are applied in order.
var rules = []rule{
	// user info in database and cache URLs
	{
		regexp.MustCompile(`(?i)\b(postgres(?:ql)?|rediss?)://[^\s@/]*@`),
		"${1}://" + RedactedCredentialPlaceholder + "@",
	},
	// Gemini API keys
	{regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`), RedactedKeyPlaceholder},
	// Anthropic API keys
	{regexp.MustCompile(`sk-ant-[0-9A-Za-z_\-]{10,}`), RedactedKeyPlaceholder},
	// key=value style secrets
	{
		regexp.MustCompile(`(?i)(api[_-]?key|token|secret|password)(["'\s:=]+)[^\s"'&,]{6,}`),
		"${1}${2}" + RedactionPlaceholder,
	},
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), RedactedStackPlaceholder},
	{regexp.MustCompile(`(?i)\b(SELECT|INSERT INTO|UPDATE|DELETE FROM)\b[^;\n]*`), RedactedSQLPlaceholder},
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPathPlaceholder},
}

// String redacts sensitive information from s.
func String(s string) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error redacts sensitive information from err's message.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
