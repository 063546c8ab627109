package urlutil

import (
	"errors"
	"strings"
	"testing"
)

func TestSetQueryParam(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		key   string
		value string
		want  string
	}{
		// Insert
		{"no query uses ?", "https://e.co/path", "id", "42", "https://e.co/path?id=42"},
		{"existing query uses &", "https://e.co/path?x=2", "id", "42", "https://e.co/path?x=2&id=42"},
		{"bare trailing ?", "https://e.co/path?", "id", "42", "https://e.co/path?&id=42"},
		{"bare trailing &", "https://e.co/path?x=2&", "id", "42", "https://e.co/path?x=2&&id=42"},
		{"relative url", "/lists", "page", "2", "/lists?page=2"},
		{"empty url", "", "id", "42", "?id=42"},

		// Replace
		{"replace first", "https://e.co/path?id=1&x=2", "id", "42", "https://e.co/path?id=42&x=2"},
		{"replace last", "https://e.co/path?x=2&id=1", "id", "42", "https://e.co/path?x=2&id=42"},
		{"replace empty value", "https://e.co/path?id=&x=2", "id", "42", "https://e.co/path?id=42&x=2"},
		{"replace bare flag", "https://e.co/path?id&x=2", "id", "42", "https://e.co/path?id=42&x=2"},
		{"replace escaped name", "https://e.co/path?i%64=1", "id", "42", "https://e.co/path?id=42"},
		{"value may be empty", "https://e.co/path?id=1", "id", "", "https://e.co/path?id="},

		// No substring matches
		{"suffix of another name", "https://e.co/path?userid=7", "id", "42", "https://e.co/path?userid=7&id=42"},
		{"name inside a value", "https://e.co/path?q=id=3", "id", "42", "https://e.co/path?q=id=3&id=42"},
		{"name inside the path", "https://e.co/id=3/x", "id", "42", "https://e.co/id=3/x?id=42"},

		// Fragment
		{"fragment kept at end", "https://e.co/p#top", "id", "42", "https://e.co/p?id=42#top"},
		{"fragment with query", "https://e.co/p?id=1#a?id=2", "id", "42", "https://e.co/p?id=42#a?id=2"},

		// Duplicates: every occurrence is rewritten
		{"duplicate keys", "https://e.co/p?id=1&x=2&id=3", "id", "42", "https://e.co/p?id=42&x=2&id=42"},

		// Values are not encoded
		{"raw value", "https://e.co/p", "name", "a b/c", "https://e.co/p?name=a b/c"},
		{"value with =", "https://e.co/p", "filter", "a=b", "https://e.co/p?filter=a=b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SetQueryParam(tt.url, tt.key, tt.value)
			if err != nil {
				t.Fatalf("SetQueryParam(%q, %q, %q) error: %v", tt.url, tt.key, tt.value, err)
			}
			if got != tt.want {
				t.Errorf("SetQueryParam(%q, %q, %q) = %q, want %q",
					tt.url, tt.key, tt.value, got, tt.want)
			}
		})
	}
}

func TestSetQueryParamSingleOccurrence(t *testing.T) {
	urls := []string{
		"https://e.co/a?id=1",
		"https://e.co/a?x=1&id=9&y=2",
		"https://e.co/a?id=&z=3#frag",
	}
	for _, u := range urls {
		got, err := SetQueryParam(u, "id", "77")
		if err != nil {
			t.Fatalf("SetQueryParam(%q): %v", u, err)
		}
		if n := strings.Count(got, "id=77"); n != 1 {
			t.Errorf("SetQueryParam(%q) = %q has %d occurrences of id=77, want 1", u, got, n)
		}
		if len(strings.Split(got, "&")) != len(strings.Split(u, "&")) {
			t.Errorf("SetQueryParam(%q) = %q changed the number of pairs", u, got)
		}
	}
}

func TestSetQueryParamAppendSeparator(t *testing.T) {
	urls := []string{"https://e.co/a", "https://e.co/a?", "https://e.co/a?x=1", "https://e.co/a?x=1&", "/a?userid=2", ""}
	for _, u := range urls {
		got, err := SetQueryParam(u, "id", "5")
		if err != nil {
			t.Fatalf("SetQueryParam(%q): %v", u, err)
		}
		sep := "&"
		if !strings.Contains(u, "?") {
			sep = "?"
		}
		if want := u + sep + "id=5"; got != want {
			t.Errorf("SetQueryParam(%q) = %q, want %q", u, got, want)
		}
	}
}

func TestSetQueryParamErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  error
	}{
		{"empty key", "", "1", ErrEmptyKey},
		{"key with &", "a&b", "1", ErrInvalidParam},
		{"key with =", "a=b", "1", ErrInvalidParam},
		{"key with #", "a#", "1", ErrInvalidParam},
		{"key with ?", "a?", "1", ErrInvalidParam},
		{"value with &", "a", "1&b=2", ErrInvalidParam},
		{"value with #", "a", "1#x", ErrInvalidParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SetQueryParam("https://e.co/p", tt.key, tt.value)
			if !errors.Is(err, tt.want) {
				t.Errorf("SetQueryParam(key=%q, value=%q) error = %v, want %v", tt.key, tt.value, err, tt.want)
			}
		})
	}
}

func TestApplyQueryParams(t *testing.T) {
	got, err := ApplyQueryParams("https://e.co/p?id=1", []Param{
		{Key: "id", Value: "2"},
		{Key: "tab", Value: "sharing"},
		{Key: "id", Value: "3"},
	})
	if err != nil {
		t.Fatalf("ApplyQueryParams error: %v", err)
	}
	if want := "https://e.co/p?id=3&tab=sharing"; got != want {
		t.Errorf("ApplyQueryParams = %q, want %q", got, want)
	}

	if got, err := ApplyQueryParams("https://e.co/p", nil); err != nil || got != "https://e.co/p" {
		t.Errorf("ApplyQueryParams(nil) = %q, %v", got, err)
	}

	_, err = ApplyQueryParams("https://e.co/p", []Param{{Key: "ok", Value: "1"}, {Key: ""}})
	if !errors.Is(err, ErrEmptyKey) {
		t.Errorf("ApplyQueryParams with empty key error = %v, want ErrEmptyKey", err)
	}
}

func TestParseParam(t *testing.T) {
	tests := []struct {
		in      string
		want    Param
		wantErr error
	}{
		{"id=42", Param{Key: "id", Value: "42"}, nil},
		{"filter=a=b", Param{Key: "filter", Value: "a=b"}, nil},
		{"empty=", Param{Key: "empty", Value: ""}, nil},
		{"novalue", Param{}, ErrInvalidParam},
		{"=1", Param{}, ErrEmptyKey},
	}
	for _, tt := range tests {
		got, err := ParseParam(tt.in)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseParam(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseParam(%q) = %+v, %v; want %+v", tt.in, got, err, tt.want)
		}
	}
}

func TestIsValidAbsHTTPURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com/path?x=1", true},
		{"https://example.com:8080/path", true},
		{"example.com", false},
		{"ftp://example.com", false},
		{"https://user:pw@example.com", false},
		{"https://exa\nmple.com", false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		if got := IsValidAbsHTTPURL(tt.in); got != tt.want {
			t.Errorf("IsValidAbsHTTPURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHasQueryParam(t *testing.T) {
	tests := []struct {
		url, key string
		want     bool
	}{
		{"https://e.co/p?id=1", "id", true},
		{"https://e.co/p?userid=1", "id", false},
		{"https://e.co/p?a=1&flag", "flag", true},
		{"https://e.co/p?list%5Bid%5D=1", "list[id]", true},
		{"https://e.co/p#?id=1", "id", false},
		{"https://e.co/id", "id", false},
		{"https://e.co/p?id=1", "", false},
	}
	for _, tt := range tests {
		if got := HasQueryParam(tt.url, tt.key); got != tt.want {
			t.Errorf("HasQueryParam(%q, %q) = %v, want %v", tt.url, tt.key, got, tt.want)
		}
	}
}
