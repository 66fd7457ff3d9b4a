package linkform

import (
	"net/url"
	"regexp"
	"strings"
)

var schemePattern = regexp.MustCompile(`(?i)^((https?|ftps?|rtmpt?)://|mailto:)`)

// HasScheme reports whether raw starts with a recognised link scheme.
func HasScheme(raw string) bool {
	return schemePattern.MatchString(raw)
}

// NormalizeURL prefixes http:// unless raw already starts with a recognised
// scheme, then canonicalises the result the way a browser resolves an href:
// the scheme and host are lower-cased and an empty path becomes "/".
// Values that do not parse are returned prefixed but otherwise untouched.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !HasScheme(raw) {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Opaque != "" || u.Host == "" {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
