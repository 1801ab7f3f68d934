// Package storage defines the Storage interface, the contract any
// persistence backend must satisfy to work with this application.
//
// Handlers depend only on this interface. Backends live in sub-packages
// (sqlite, postgres) and are picked at start-up from the configuration.
//
// Records are stored as JSON documents grouped by collection. The collection
// of a record is its schema name lower-cased ("Booking" -> "booking").
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aanand-mishra/housekeeping-api/internal/schema"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no document matches the requested id.
var ErrNotFound = errors.New("document not found")

// Document is a stored record.
type Document struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Storage is the persistence contract.
type Storage interface {
	// Insert stores a validated record in its collection and returns the
	// stored document with its generated id.
	Insert(ctx context.Context, rec schema.Record) (Document, error)

	// Get fetches one document. Returns ErrNotFound if there is none.
	Get(ctx context.Context, collection, id string) (Document, error)

	// List returns every document of a collection, oldest first.
	// Returns an empty slice (not nil) if the collection is empty.
	List(ctx context.Context, collection string) ([]Document, error)

	// Delete removes a document. Returns ErrNotFound if there is none.
	Delete(ctx context.Context, collection, id string) error

	Close() error
}

// NewDocument prepares a record for insertion: it assigns a fresh UUID and
// creation time and encodes the record's fields.
func NewDocument(rec schema.Record) (Document, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return Document{}, fmt.Errorf("storage.NewDocument: encode %s: %w", rec.Schema(), err)
	}
	return Document{
		ID:         uuid.NewString(),
		Collection: rec.Collection(),
		Data:       data,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
