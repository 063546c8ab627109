// pantry/urlutil/urlutil.go
package urlutil

import (
	"net/url"
	"strings"
)

// IsValidAbsHTTPURL reports whether s is an absolute http(s) URL with a host,
// no credentials in the authority, and no CR/LF.
//
// The query helpers in this package never validate their input; callers
// that want to refuse anything but a plain web address (for example before
// handing an Audience List link to an operator) check it here first.
//
// Examples:
//
//	IsValidAbsHTTPURL("https://example.com/path?x=1") // true
//	IsValidAbsHTTPURL("example.com")                   // false (no scheme)
//	IsValidAbsHTTPURL("ftp://example.com")             // false (invalid scheme)
//	IsValidAbsHTTPURL("https://user:pw@example.com")   // false (credentials)
//	IsValidAbsHTTPURL("   ")                           // false (blank)
func IsValidAbsHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return u.User == nil
}
