// pantry/urlutil/query.go
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrEmptyKey is returned when a query parameter has no name.
	ErrEmptyKey = errors.New("query key is empty")

	// ErrInvalidParam is returned when a key or value would change the
	// structure of the query string it is written into.
	ErrInvalidParam = errors.New("invalid query parameter")
)

// Param is a single key=value query parameter. Neither side is escaped.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (p Param) String() string { return p.Key + "=" + p.Value }

// Validate rejects empty keys, keys containing & = # ?, and values
// containing & or #.
func (p Param) Validate() error {
	if p.Key == "" {
		return ErrEmptyKey
	}
	if strings.ContainsAny(p.Key, "&=#?") {
		return fmt.Errorf("%w: key %q may not contain &, =, # or ?", ErrInvalidParam, p.Key)
	}
	if strings.ContainsAny(p.Value, "&#") {
		return fmt.Errorf("%w: value %q for key %q may not contain & or #", ErrInvalidParam, p.Value, p.Key)
	}
	return nil
}

// ParseParam parses "key=value". The value may itself contain "=".
func ParseParam(s string) (Param, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return Param{}, fmt.Errorf("%w: %q is not key=value", ErrInvalidParam, s)
	}
	p := Param{Key: key, Value: value}
	if err := p.Validate(); err != nil {
		return Param{}, err
	}
	return p, nil
}

// SetQueryParam inserts key=value into the query string of rawURL, or
// replaces the value when key is already present.
//
// The query is handled as an ordered list of name[=value] pairs rather than
// by substring search, so "id" never matches "userid" and text in the path
// or fragment is never touched. Pairs other than key keep their position and
// exact bytes. When key is absent the pair is appended, joined with "?" if
// rawURL has no "?" and "&" otherwise, even after a bare trailing "?" or
// "&". A fragment stays at the end.
//
// If key occurs more than once, every occurrence is rewritten to key=value.
//
// Nothing is percent-encoded and rawURL is not checked for well-formedness;
// see IsValidAbsHTTPURL for that.
//
//	SetQueryParam("https://e.co/path", "id", "42")           // "https://e.co/path?id=42"
//	SetQueryParam("https://e.co/path?id=1&x=2", "id", "42")  // "https://e.co/path?id=42&x=2"
func SetQueryParam(rawURL, key, value string) (string, error) {
	p := Param{Key: key, Value: value}
	if err := p.Validate(); err != nil {
		return "", err
	}
	return setParam(rawURL, p), nil
}

// ApplyQueryParams applies SetQueryParam for each param in order. All params
// are validated before any is applied.
func ApplyQueryParams(rawURL string, params []Param) (string, error) {
	for _, p := range params {
		if err := p.Validate(); err != nil {
			return "", err
		}
	}
	for _, p := range params {
		rawURL = setParam(rawURL, p)
	}
	return rawURL, nil
}

func setParam(rawURL string, p Param) string {
	base, fragment := rawURL, ""
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		base, fragment = rawURL[:i], rawURL[i:]
	}

	head, query, hasQuery := strings.Cut(base, "?")
	if !hasQuery {
		return head + "?" + p.String() + fragment
	}

	pairs := strings.Split(query, "&")
	found := false
	for i, pair := range pairs {
		if pairHasName(pair, p.Key) {
			pairs[i] = p.String()
			found = true
		}
	}
	if found {
		return head + "?" + strings.Join(pairs, "&") + fragment
	}

	return head + "?" + query + "&" + p.String() + fragment
}

// HasQueryParam reports whether the query of rawURL contains a pair named
// key, using the same matching as SetQueryParam.
func HasQueryParam(rawURL, key string) bool {
	base, _, _ := strings.Cut(rawURL, "#")
	_, query, ok := strings.Cut(base, "?")
	if !ok || key == "" {
		return false
	}
	for _, pair := range strings.Split(query, "&") {
		if pairHasName(pair, key) {
			return true
		}
	}
	return false
}

// pairHasName compares the name part of a raw pair against key, both as
// written and after query unescaping.
func pairHasName(pair, key string) bool {
	name, _, _ := strings.Cut(pair, "=")
	if name == key {
		return true
	}
	unescaped, err := url.QueryUnescape(name)
	return err == nil && unescaped == key
}
