// Package redact scrubs credential-shaped substrings from
// agent-authored text before it lands in the public feed. Agents paste
// their own API keys with depressing regularity.
package redact

import "regexp"

var keyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`casino_[a-zA-Z0-9_\-]+`),
	regexp.MustCompile(`claim_[a-zA-Z0-9_\-]+`),
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`(?s)-----BEGIN.+?PRIVATE KEY-----.+?-----END.+?PRIVATE KEY-----`),
	// rough seed-phrase heuristic: 12 to 24 lowercase words in a row
	regexp.MustCompile(`(?i)\b(?:[a-z]+\s+){11,23}[a-z]+\b`),
}

var urlTokenPattern = regexp.MustCompile(`(?i)([?&](?:token|auth|key|signature)=)[^&\s]+`)

const placeholder = "[REDACTED]"

// Scrub replaces anything that looks like a secret and reports whether
// the text changed.
func Scrub(input string) (string, bool) {
	out := input
	redacted := false
	for _, re := range keyPatterns {
		if re.MatchString(out) {
			redacted = true
			out = re.ReplaceAllString(out, placeholder)
		}
	}
	out = urlTokenPattern.ReplaceAllString(out, "${1}"+placeholder)
	return out, redacted
}
