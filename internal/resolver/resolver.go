package resolver

import (
	"net/url"
	"regexp"
)

var (
	pathRe  = regexp.MustCompile(`/s([a-zA-Z0-9_-]+)`)
	hashRe  = regexp.MustCompile(`^s([a-zA-Z0-9_-]+)`)
	validRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,20}$`)
)

// Resolve extracts a session code from a result URL. Sources are tried
// in priority order and the first match wins:
//
//  1. a path segment of the form /s<code>
//  2. a fragment of the form #s<code>
//  3. a "session" query parameter
//
// Returns "" when no source matches. Length validation is separate, see
// IsValidCode.
func Resolve(u *url.URL) string {
	if u == nil {
		return ""
	}

	if m := pathRe.FindStringSubmatch(u.Path); m != nil {
		return m[1]
	}

	if m := hashRe.FindStringSubmatch(u.Fragment); m != nil {
		return m[1]
	}

	return u.Query().Get("session")
}

// IsValidCode reports whether code is a well-formed session code:
// 1-20 characters, alphanumeric plus underscore and hyphen. Codes like
// "27", "s23Tq9" and "session_123" are all accepted.
func IsValidCode(code string) bool {
	return validRe.MatchString(code)
}

// CanonicalPath returns the canonical result path for a session code.
// Codes resolved from a fragment or query parameter should be
// normalized to this form.
func CanonicalPath(code string) string {
	return "/s" + code
}
