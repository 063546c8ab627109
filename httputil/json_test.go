package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bindTarget struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"ok": "yes"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":"yes"}`, rec.Body.String())
}

func TestWriteJSON_ClampsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 42, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusBadRequest, "invalid_param", "query key is empty")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid_param","message":"query key is empty"}`, rec.Body.String())
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"ok", `{"name":"a","size":1}`, ""},
		{"empty", ``, "request body is empty"},
		{"truncated", `{"name":`, "malformed JSON: unexpected end of input"},
		{"syntax", `{"name" "a"}`, "malformed JSON at position"},
		{"type", `{"size":"big"}`, `invalid value for field "size"`},
		{"unknown", `{"color":"red"}`, `unknown field "color"`},
		{"trailing", `{"name":"a"} {"name":"b"}`, "multiple JSON values"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got bindTarget
			err := BindJSON(req, &got)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, bindTarget{Name: "a", Size: 1}, got)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestBindJSON_TooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 64)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	var got bindTarget
	err := BindJSON(req, &got)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
	assert.EqualError(t, err, "request body too large")
}

func TestBindError(t *testing.T) {
	rec := httptest.NewRecorder()
	BindError(rec, ErrBodyTooLarge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"request_too_large","message":"request body too large"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	BindError(rec, errors.New("request body is empty"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid_request","message":"request body is empty"}`, rec.Body.String())
}
