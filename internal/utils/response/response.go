// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Error responses always share one envelope, so API consumers can rely on
// its shape:
//
//	{ "status": "error", "error": "field name: field required", "fields": [...] }
package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aanand-mishra/housekeeping-api/internal/schema"
)

// Response is the standard envelope returned for error cases.
// Fields is only set for validation failures and lists every field error.
type Response struct {
	Status string              `json:"status"`
	Error  string              `json:"error"`
	Fields []schema.FieldError `json:"fields,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes data as JSON with the given HTTP status code.
//
// data is encoded before anything is sent, so a value that cannot be
// encoded produces a 500 error response instead of a half-written one.
// The encode or write error is returned for the caller to log.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		err = fmt.Errorf("response.WriteJSON: encode: %w", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(GeneralError(err))
		writeBody(w, status, body)
		return err
	}
	return writeBody(w, status, body)
}

func writeBody(w http.ResponseWriter, status int, body []byte) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		return fmt.Errorf("response.WriteJSON: write: %w", err)
	}
	return nil
}

// GeneralError wraps any Go error into the standard Response shape.
// Use this for unexpected errors (DB failures, decode errors, etc.)
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError turns the field errors of a failed validation into a
// Response that carries both a readable summary and the structured list.
//
// Example output:
//
//	{
//	  "status": "error",
//	  "error": "field name: field required, field age: must be between 0 and 120",
//	  "fields": [
//	    { "field": "name", "kind": "missing_field", "message": "field required" },
//	    { "field": "age", "kind": "range_violation", "message": "must be between 0 and 120" }
//	  ]
//	}
func ValidationError(errs schema.ValidationErrors) Response {
	return Response{
		Status: StatusError,
		Error:  errs.Error(),
		Fields: errs,
	}
}
