// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Storage interface on a pgx connection pool. Record fields are
// kept in a jsonb column.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/housekeeping-api/internal/config"
	"github.com/aanand-mishra/housekeeping-api/internal/schema"
	"github.com/aanand-mishra/housekeeping-api/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTable = `
CREATE TABLE IF NOT EXISTS documents (
	id         UUID PRIMARY KEY,
	collection TEXT        NOT NULL,
	data       JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	seq        BIGSERIAL
);
CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection, seq);`

// Postgres is the PostgreSQL implementation of storage.Storage.
type Postgres struct {
	Pool *pgxpool.Pool
}

var _ storage.Storage = (*Postgres)(nil)

// New connects to cfg.Storage.DSN and creates the documents table if needed.
func New(ctx context.Context, cfg *config.Config) (*Postgres, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}
	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: create table: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

// Insert stores rec in its collection.
func (p *Postgres) Insert(ctx context.Context, rec schema.Record) (storage.Document, error) {
	doc, err := storage.NewDocument(rec)
	if err != nil {
		return storage.Document{}, err
	}

	const q = `
INSERT INTO documents (id, collection, data, created_at)
VALUES ($1, $2, $3, $4)`
	if _, err := p.Pool.Exec(ctx, q, doc.ID, doc.Collection, string(doc.Data), doc.CreatedAt); err != nil {
		return storage.Document{}, fmt.Errorf("Insert: %w", err)
	}
	return doc, nil
}

// Get fetches one document of a collection by id.
func (p *Postgres) Get(ctx context.Context, collection, id string) (storage.Document, error) {
	const q = `
SELECT id::text, collection, data::text, created_at
FROM documents
WHERE collection = $1 AND id::text = $2`
	doc, err := scanDocument(p.Pool.QueryRow(ctx, q, collection, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Document{}, fmt.Errorf("no %s found with id %s: %w", collection, id, storage.ErrNotFound)
		}
		return storage.Document{}, fmt.Errorf("Get: %w", err)
	}
	return doc, nil
}

// List returns every document of a collection, oldest first.
func (p *Postgres) List(ctx context.Context, collection string) ([]storage.Document, error) {
	const q = `
SELECT id::text, collection, data::text, created_at
FROM documents
WHERE collection = $1
ORDER BY seq`
	rows, err := p.Pool.Query(ctx, q, collection)
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
func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	tag, err := p.Pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id::text = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no %s found with id %s: %w", collection, id, storage.ErrNotFound)
	}
	return nil
}

// Close releases every connection of the pool.
func (p *Postgres) Close() error {
	p.Pool.Close()
	return nil
}

func scanDocument(row pgx.Row) (storage.Document, error) {
	var (
		doc  storage.Document
		data string
	)
	if err := row.Scan(&doc.ID, &doc.Collection, &data, &doc.CreatedAt); err != nil {
		return storage.Document{}, err
	}
	doc.Data = []byte(data)
	doc.CreatedAt = doc.CreatedAt.UTC()
	return doc, nil
}
