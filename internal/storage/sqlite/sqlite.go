// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// All collections share one documents table; a record's fields are stored
// as a JSON text column.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aanand-mishra/housekeeping-api/internal/config"
	"github.com/aanand-mishra/housekeeping-api/internal/schema"
	"github.com/aanand-mishra/housekeeping-api/internal/storage"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the SQLite implementation of storage.Storage.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.Storage.Path, creates the documents
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite allows one writer at a time; a single connection also keeps
	// ":memory:" databases from being split across the pool.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			id         TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			data       TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS documents_collection_idx
			ON documents (collection);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Insert stores rec in its collection.
func (s *SQLite) Insert(ctx context.Context, rec schema.Record) (storage.Document, error) {
	doc, err := storage.NewDocument(rec)
	if err != nil {
		return storage.Document{}, err
	}

	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO documents (id, collection, data, created_at) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return storage.Document{}, fmt.Errorf("Insert: prepare: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, doc.ID, doc.Collection, string(doc.Data),
		doc.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return storage.Document{}, fmt.Errorf("Insert: exec: %w", err)
	}

	return doc, nil
}

// Get fetches one document of a collection by id.
func (s *SQLite) Get(ctx context.Context, collection, id string) (storage.Document, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, collection, data, created_at FROM documents WHERE collection = ? AND id = ? LIMIT 1",
	)
	if err != nil {
		return storage.Document{}, fmt.Errorf("Get: prepare: %w", err)
	}
	defer stmt.Close()

	doc, err := scanDocument(stmt.QueryRowContext(ctx, collection, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Document{}, fmt.Errorf("no %s found with id %s: %w", collection, id, storage.ErrNotFound)
		}
		return storage.Document{}, fmt.Errorf("Get: scan: %w", err)
	}

	return doc, nil
}

// List returns every document of a collection, oldest first.
func (s *SQLite) List(ctx context.Context, collection string) ([]storage.Document, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, collection, data, created_at FROM documents WHERE collection = ? ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("List: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("List: query: %w", err)
	}
	defer rows.Close()

	docs := make([]storage.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows iteration: %w", err)
	}

	return docs, nil
}

// Delete removes one document of a collection.
func (s *SQLite) Delete(ctx context.Context, collection, id string) error {
	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM documents WHERE collection = ? AND id = ?")
	if err != nil {
		return fmt.Errorf("Delete: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, collection, id)
	if err != nil {
		return fmt.Errorf("Delete: exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no %s found with id %s: %w", collection, id, storage.ErrNotFound)
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (storage.Document, error) {
	var (
		doc       storage.Document
		data      string
		createdAt string
	)
	if err := row.Scan(&doc.ID, &doc.Collection, &data, &createdAt); err != nil {
		return storage.Document{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return storage.Document{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	doc.Data = []byte(data)
	doc.CreatedAt = ts

	return doc, nil
}
