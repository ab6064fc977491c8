// ABOUTME: String and domain normalization used by match scoring
// ABOUTME: Pure, idempotent helpers shared by the scorer and resolver
package sync

import "strings"

// Normalize lower-cases the input and strips every character outside
// [a-z0-9]. Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExtractDomain pulls the domain out of an email address or URL. For emails
// it returns the part after the last '@'; for URLs it strips the scheme and
// a leading "www." and returns the host up to the first '/'. Empty input
// returns "".
func ExtractDomain(emailOrURL string) string {
	s := strings.TrimSpace(emailOrURL)
	if s == "" {
		return ""
	}

	if idx := strings.LastIndex(s, "@"); idx >= 0 {
		return strings.ToLower(s[idx+1:])
	}

	if idx := strings.Index(s, "://"); idx >= 0 {
		s = s[idx+3:]
	}
	s = strings.TrimPrefix(s, "www.")
	if idx := strings.Index(s, "/"); idx >= 0 {
		s = s[:idx]
	}
	return strings.ToLower(s)
}
