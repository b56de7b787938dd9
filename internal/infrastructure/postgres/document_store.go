package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-storefront/internal/infrastructure/docstore"
)

// DocumentStore keeps every collection in a single JSONB table keyed by
// (collection, id). See db/migrations for the schema.
type DocumentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, err
	}
	return docstore.Document{ID: id, Data: data}, nil
}

func (s *DocumentStore) List(ctx context.Context, collection string) ([]docstore.Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, data FROM documents
		WHERE collection = $1
		ORDER BY created_at, id
	`, collection)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *DocumentStore) Where(ctx context.Context, collection, field string, value any) ([]docstore.Document, error) {
	filter, err := json.Marshal(map[string]any{field: value})
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, data FROM documents
		WHERE collection = $1 AND data @> $2::jsonb
		ORDER BY created_at, id
	`, collection, filter)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *DocumentStore) Create(ctx context.Context, collection string, data json.RawMessage) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
	`, collection, id, []byte(data))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *DocumentStore) Set(ctx context.Context, collection, id string, data json.RawMessage) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, collection, id, []byte(data))
	return err
}

func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	res, err := s.pool.Exec(ctx, `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
	`, collection, id, patch)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id)
	return err
}

func collect(rows pgx.Rows) ([]docstore.Document, error) {
	defer rows.Close()
	out := make([]docstore.Document, 0)
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		out = append(out, docstore.Document{ID: id, Data: data})
	}
	return out, rows.Err()
}

var _ docstore.Store = (*DocumentStore)(nil)
