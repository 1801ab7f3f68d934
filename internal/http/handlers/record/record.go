// Package record contains the HTTP handlers for the record collections
// (user, product, service, booking).
//
// Handlers are built by factory functions that receive their dependencies
// once at start-up and return the http.HandlerFunc the router calls on
// every request:
//
//	router.HandleFunc("POST /api/{collection}", record.New(v, storage, m))
//
// The {collection} path segment selects the schema: it is the schema name
// lower-cased, so "booking" validates against the Booking schema.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/housekeeping-api/internal/metrics"
	"github.com/aanand-mishra/housekeeping-api/internal/schema"
	"github.com/aanand-mishra/housekeeping-api/internal/storage"
	"github.com/aanand-mishra/housekeeping-api/internal/utils/response"
)

// errNotObject is reported when the body is valid JSON but not an object.
var errNotObject = errors.New("request body must be a JSON object")

// New handles POST /api/{collection}
// Validates the JSON body against the collection's schema and stores it.
//
// Request body (JSON), for /api/user:
//
//	{ "name": "Asha", "email": "a@x.com", "address": "12 MG Road" }
//
// Success response (201 Created): the stored document, defaults applied.
//
//	{ "id": "6f0c…", "collection": "user", "created_at": "…",
//	  "data": { "name": "Asha", …, "age": null, "is_active": true } }
//
// Error responses:
//
//	400 Bad Request           — empty body or malformed JSON
//	404 Not Found             — unknown collection
//	422 Unprocessable Entity  — validation failed; every field error listed
//	500 Internal              — database error
func New(v *schema.Validator, st storage.Storage, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(w, r, v.Registry())
		if !ok {
			return
		}
		slog.Info("creating a record", slog.String("collection", s.Collection()))

		rec, ok := decodeAndValidate(w, r, v, s, m)
		if !ok {
			return
		}

		doc, err := st.Insert(r.Context(), rec)
		m.RecordStorage(s.Collection(), "insert", err)
		if err != nil {
			slog.Error("error storing record",
				slog.String("collection", s.Collection()),
				slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		slog.Info("record created",
			slog.String("collection", doc.Collection),
			slog.String("id", doc.ID))
		writeJSON(w, http.StatusCreated, doc)
	}
}

// Validate handles POST /api/{collection}/validate
// Runs the validation of New without storing anything and returns the
// validated record (200) or the field errors (422).
func Validate(v *schema.Validator, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(w, r, v.Registry())
		if !ok {
			return
		}

		rec, ok := decodeAndValidate(w, r, v, s, m)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// GetByID handles GET /api/{collection}/{id}
//
// Error responses:
//
//	404 Not Found  — unknown collection or no document with that id
//	500 Internal   — database error
func GetByID(reg *schema.Registry, st storage.Storage, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(w, r, reg)
		if !ok {
			return
		}
		id := r.PathValue("id")
		slog.Info("getting a record",
			slog.String("collection", s.Collection()),
			slog.String("id", id))

		doc, err := st.Get(r.Context(), s.Collection(), id)
		m.RecordStorage(s.Collection(), "get", ignoreNotFound(err))
		if err != nil {
			writeStorageError(w, s.Collection(), id, err)
			return
		}

		writeJSON(w, http.StatusOK, doc)
	}
}

// GetList handles GET /api/{collection}
// Returns a JSON array of all documents of the collection, [] when empty.
func GetList(reg *schema.Registry, st storage.Storage, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(w, r, reg)
		if !ok {
			return
		}
		slog.Info("listing records", slog.String("collection", s.Collection()))

		docs, err := st.List(r.Context(), s.Collection())
		m.RecordStorage(s.Collection(), "list", err)
		if err != nil {
			slog.Error("error listing records",
				slog.String("collection", s.Collection()),
				slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		writeJSON(w, http.StatusOK, docs)
	}
}

// Delete handles DELETE /api/{collection}/{id}
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
func Delete(reg *schema.Registry, st storage.Storage, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookup(w, r, reg)
		if !ok {
			return
		}
		id := r.PathValue("id")
		slog.Info("deleting a record",
			slog.String("collection", s.Collection()),
			slog.String("id", id))

		err := st.Delete(r.Context(), s.Collection(), id)
		m.RecordStorage(s.Collection(), "delete", ignoreNotFound(err))
		if err != nil {
			writeStorageError(w, s.Collection(), id, err)
			return
		}

		slog.Info("record deleted",
			slog.String("collection", s.Collection()),
			slog.String("id", id))
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// Schemas handles GET /api/schemas
// Lists every schema with its collection and field descriptors, so clients
// can build forms without hard-coding the rules.
func Schemas(reg *schema.Registry) http.HandlerFunc {
	type entry struct {
		*schema.Schema
		Collection string `json:"collection"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]entry, 0, len(reg.Names()))
		for _, s := range reg.Schemas() {
			out = append(out, entry{Schema: s, Collection: s.Collection()})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// lookup resolves the {collection} path segment, writing a 404 if unknown.
func lookup(w http.ResponseWriter, r *http.Request, reg *schema.Registry) (*schema.Schema, bool) {
	collection := r.PathValue("collection")
	s, ok := reg.ByCollection(collection)
	if !ok {
		writeJSON(w, http.StatusNotFound,
			response.GeneralError(fmt.Errorf("unknown collection %q", collection)))
		return nil, false
	}
	return s, true
}

// decodeAndValidate reads the body as a JSON object and validates it
// against s. It writes the error response itself and reports false when
// the request cannot proceed.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *schema.Validator, s *schema.Schema, m *metrics.Metrics) (schema.Record, bool) {
	dec := json.NewDecoder(r.Body)
	// keep numbers as json.Number so large integers are not rounded
	dec.UseNumber()

	var raw map[string]any
	err := dec.Decode(&raw)
	if errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return schema.Record{}, false
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return schema.Record{}, false
	}
	if raw == nil {
		writeJSON(w, http.StatusBadRequest, response.GeneralError(errNotObject))
		return schema.Record{}, false
	}

	rec, err := v.ValidateSchema(s, raw)
	if err != nil {
		ve, ok := schema.AsValidationErrors(err)
		if !ok {
			writeJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return schema.Record{}, false
		}

		kinds := make([]string, 0, len(ve))
		for _, fe := range ve {
			kinds = append(kinds, string(fe.Kind))
		}
		m.RecordValidation(s.Name, kinds)

		slog.Info("validation failed",
			slog.String("schema", s.Name),
			slog.Int("errors", len(ve)))
		writeJSON(w, http.StatusUnprocessableEntity, response.ValidationError(ve))
		return schema.Record{}, false
	}

	m.RecordValidation(s.Name, nil)
	return rec, true
}

func writeStorageError(w http.ResponseWriter, collection, id string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, response.GeneralError(err))
		return
	}
	slog.Error("storage error",
		slog.String("collection", collection),
		slog.String("id", id),
		slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}

// writeJSON sends data and logs a response that could not be encoded or
// written.
func writeJSON(w http.ResponseWriter, status int, data any) {
	if err := response.WriteJSON(w, status, data); err != nil {
		slog.Error("failed to write response",
			slog.Int("status", status),
			slog.String("error", err.Error()))
	}
}

// ignoreNotFound keeps missing documents out of the storage error metric.
func ignoreNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}
