// pantry/testing/recorder.go
package testing

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Recorder sends requests to a handler without starting a server.
type Recorder struct {
	t       *testing.T
	handler http.Handler
}

// NewRecorder returns a Recorder bound to handler.
func NewRecorder(t *testing.T, handler http.Handler) *Recorder {
	return &Recorder{t: t, handler: handler}
}

// Request starts a request builder.
func (rec *Recorder) Request(method, path string) *Request {
	return &Request{rec: rec, method: method, path: path, header: make(http.Header)}
}

// Get starts a GET request.
func (rec *Recorder) Get(path string) *Request { return rec.Request(http.MethodGet, path) }

// Post starts a POST request.
func (rec *Recorder) Post(path string) *Request { return rec.Request(http.MethodPost, path) }

// Request builds one call against the Recorder's handler.
type Request struct {
	rec    *Recorder
	method string
	path   string
	header http.Header
	body   io.Reader
}

// Header sets a request header.
func (rr *Request) Header(key, value string) *Request {
	rr.header.Set(key, value)
	return rr
}

// Bearer sets an Authorization bearer token.
func (rr *Request) Bearer(token string) *Request {
	return rr.Header("Authorization", "Bearer "+token)
}

// BodyString sets a raw body without touching Content-Type.
func (rr *Request) BodyString(body string) *Request {
	rr.body = strings.NewReader(body)
	return rr
}

// JSON marshals v as the body and sets Content-Type: application/json.
func (rr *Request) JSON(v any) *Request {
	rr.rec.t.Helper()
	b, err := json.Marshal(v)
	require.NoError(rr.rec.t, err, "marshal request body")
	rr.body = bytes.NewReader(b)
	return rr.Header("Content-Type", "application/json")
}

// Do runs the request and returns the recorded response.
func (rr *Request) Do() *Response {
	rr.rec.t.Helper()

	req := httptest.NewRequest(rr.method, rr.path, rr.body)
	for k, v := range rr.header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	rr.rec.handler.ServeHTTP(w, req)

	resp := w.Result()
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(rr.rec.t, err, "read response body")

	return &Response{Response: resp, Body: body, t: rr.rec.t}
}

// Response wraps http.Response with assertion methods.
type Response struct {
	*http.Response
	Body []byte
	t    *testing.T
}

// Status asserts the status code.
func (r *Response) Status(code int) *Response {
	r.t.Helper()
	assert.Equal(r.t, code, r.StatusCode, "body: %s", r.Body)
	return r
}

// ContentTypeJSON asserts a JSON Content-Type.
func (r *Response) ContentTypeJSON() *Response {
	r.t.Helper()
	assert.Contains(r.t, r.Header.Get("Content-Type"), "application/json")
	return r
}

// JSONEq asserts the body is JSON equivalent to expected.
func (r *Response) JSONEq(expected string) *Response {
	r.t.Helper()
	assert.JSONEq(r.t, expected, string(r.Body))
	return r
}

// JSON unmarshals the body into v.
func (r *Response) JSON(v any) *Response {
	r.t.Helper()
	require.NoError(r.t, json.Unmarshal(r.Body, v), "body: %s", r.Body)
	return r
}

// JSONPath returns the value at a dot-separated path such as
// "result.tags.0". Array elements are addressed by index.
func (r *Response) JSONPath(path string) any {
	r.t.Helper()

	var current any
	require.NoError(r.t, json.Unmarshal(r.Body, &current), "body: %s", r.Body)

	for _, part := range strings.Split(path, ".") {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[part]
			require.True(r.t, ok, "path %q not found at %q", path, part)
			current = next
		case []any:
			idx, err := strconv.Atoi(part)
			require.NoError(r.t, err, "invalid index %q in path %q", part, path)
			require.True(r.t, idx >= 0 && idx < len(v), "index %d out of bounds in path %q", idx, path)
			current = v[idx]
		default:
			r.t.Fatalf("cannot navigate path %q at %q (type %T)", path, part, current)
		}
	}
	return current
}

// JSONPathEquals asserts the value at path. Numbers compare as float64,
// the way encoding/json decodes them.
func (r *Response) JSONPathEquals(path string, expected any) *Response {
	r.t.Helper()
	assert.EqualValues(r.t, expected, r.JSONPath(path), "path %q", path)
	return r
}

// ErrorCode asserts the "error" field of the JSON error envelope.
func (r *Response) ErrorCode(code string) *Response {
	r.t.Helper()
	return r.JSONPathEquals("error", code)
}

// String returns the body.
func (r *Response) String() string {
	return string(r.Body)
}
