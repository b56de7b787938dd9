package docstore

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/oksasatya/go-storefront/internal/domain/repository"
)

// ErrNotFound is shared with the repository layer so callers can match on either.
var ErrNotFound = repository.ErrNotFound

// Document is a schemaless JSON document addressed by collection path and id.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Store is the remote document store. Every method performs exactly one
// store operation; there is no batching, retry or transaction support.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	// Where returns documents whose top-level field equals value.
	Where(ctx context.Context, collection, field string, value any) ([]Document, error)
	// Create stores data under a generated id and returns it.
	Create(ctx context.Context, collection string, data json.RawMessage) (string, error)
	// Set creates or replaces the document with the given id.
	Set(ctx context.Context, collection, id string, data json.RawMessage) error
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes the document. Missing ids are not an error.
	Delete(ctx context.Context, collection, id string) error
}

// Path joins collection segments, e.g. Path("users", uid, "cart").
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}

// Decode unmarshals a document into dest.
func Decode(doc Document, dest any) error {
	return json.Unmarshal(doc.Data, dest)
}

// Encode marshals v into document data.
func Encode(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
