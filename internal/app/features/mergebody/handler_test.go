package mergebody

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/audiencekit/internal/app/audience"
	wtest "github.com/dalemusser/audiencekit/pantry/testing"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func newRecorder(t *testing.T) *wtest.Recorder {
	r := chi.NewRouter()
	NewHandler(audience.New(nil), wtest.TestLogger()).Mount(r)
	return wtest.NewRecorder(t, r)
}

func TestMerge(t *testing.T) {
	rec := newRecorder(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "disjoint keys",
			body: `{"original":{"a":1},"extension":{"b":2}}`,
			want: `{"result":{"a":1,"b":2}}`,
		},
		{
			name: "lists append",
			body: `{"original":{"tags":["x"]},"extension":{"tags":["y"]}}`,
			want: `{"result":{"tags":["x","y"]}}`,
		},
		{
			name: "scalar overwrite",
			body: `{"original":{"name":"old","lifeSpan":30},"extension":{"name":"new"}}`,
			want: `{"result":{"name":"new","lifeSpan":30}}`,
		},
		{
			name: "list replaced by scalar",
			body: `{"original":{"tags":["x"]},"extension":{"tags":"none"}}`,
			want: `{"result":{"tags":"none"}}`,
		},
		{
			name: "null original",
			body: `{"original":null,"extension":{"a":1}}`,
			want: `{"result":{"a":1}}`,
		},
		{
			name: "missing original with copy",
			body: `{"extension":{"a":{"b":[1]}},"copy":true}`,
			want: `{"result":{"a":{"b":[1]}}}`,
		},
		{
			name: "large ids survive",
			body: `{"original":{"listId":9007199254740993},"extension":{"advertiserId":1234567890123}}`,
			want: `{"result":{"listId":9007199254740993,"advertiserId":1234567890123}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.Post("/merge").BodyString(tt.body).Header("Content-Type", "application/json").Do().
				Status(http.StatusOK).
				ContentTypeJSON().
				JSONEq(tt.want)
		})
	}
}

func TestMerge_BodyTooLarge(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(audience.New(nil), wtest.TestLogger()).Mount(r)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/merge",
		strings.NewReader(`{"extension":{"name":"`+strings.Repeat("x", 64)+`"}}`))
	req.Body = http.MaxBytesReader(rr, req.Body, 16)
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.JSONEq(t, `{"error":"request_too_large","message":"request body too large"}`, rr.Body.String())
}

func TestMerge_BadRequests(t *testing.T) {
	rec := newRecorder(t)

	for name, body := range map[string]string{
		"empty":             ``,
		"malformed":         `{"original":`,
		"unknown field":     `{"extension":{},"extra":1}`,
		"original is array": `{"original":[1],"extension":{}}`,
		"missing extension": `{"original":{"a":1}}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec.Post("/merge").BodyString(body).Do().
				Status(http.StatusBadRequest).
				ErrorCode("invalid_request")
		})
	}
}
