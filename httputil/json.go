// httputil/json.go
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrorResponse is the JSON error envelope returned by every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ErrBodyTooLarge is returned by BindJSON when the body exceeds the limit
// set with http.MaxBytesReader.
var ErrBodyTooLarge = errors.New("request body too large")

var encodeLogger atomic.Pointer[zap.Logger]

// SetLogger sets the logger used to report encoding failures that happen
// after the status line has been sent.
func SetLogger(logger *zap.Logger) {
	encodeLogger.Store(logger)
}

// WriteJSON writes v as JSON with the given status. Statuses outside
// 100..599 are sent as 500.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		if logger := encodeLogger.Load(); logger != nil {
			logger.Error("json encoding failed after headers sent",
				zap.String("type", fmt.Sprintf("%T", v)), zap.Error(err))
		}
	}
}

// JSONError writes an ErrorResponse.
func JSONError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// BindError writes the response for a BindJSON failure: 413
// request_too_large for an oversized body, 400 invalid_request otherwise.
func BindError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		JSONError(w, http.StatusRequestEntityTooLarge, "request_too_large", err.Error())
		return
	}
	JSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
}

// BindJSON decodes the request body into v. Unknown fields, trailing
// values and empty bodies are rejected. Returned errors are safe to show
// to clients.
func BindJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return parseJSONError(err)
	}
	if dec.More() {
		return errors.New("request body contains multiple JSON values")
	}
	return nil
}

// parseJSONError converts json decoding errors into client-facing messages.
func parseJSONError(err error) error {
	if errors.Is(err, io.EOF) {
		return errors.New("request body is empty")
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrBodyTooLarge
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.New("malformed JSON: unexpected end of input")
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("malformed JSON at position %d", syntaxErr.Offset)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("invalid value for field %q: expected %s", typeErr.Field, typeErr.Type.String())
	}

	if msg, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return fmt.Errorf("unknown field %q", strings.Trim(msg, `"`))
	}

	// Errors from custom unmarshalers, e.g. a mapping that is not an object.
	return fmt.Errorf("invalid JSON in request body: %v", err)
}
