package docstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCreateGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id, err := m.Create(ctx, "products", json.RawMessage(`{"title":"Lamp","stock":3}`))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := m.Get(ctx, "products", id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.JSONEq(t, `{"title":"Lamp","stock":3}`, string(doc.Data))
}

func TestMemoryGetMissing(t *testing.T) {
	_, err := NewMemory().Get(context.Background(), "products", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDeleteMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "brands", "a", json.RawMessage(`{"name":"Acme"}`)))

	require.NoError(t, m.Delete(ctx, "brands", "missing"))
	require.NoError(t, m.Delete(ctx, "empty-collection", "missing"))

	docs, err := m.List(ctx, "brands")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0].ID)
}

func TestMemoryListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, m.Set(ctx, "categories", id, json.RawMessage(`{}`)))
	}
	// replacing an existing id keeps its position
	require.NoError(t, m.Set(ctx, "categories", "c", json.RawMessage(`{"name":"x"}`)))

	docs, err := m.List(ctx, "categories")
	require.NoError(t, err)
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestMemoryUpdateMerges(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "orders", "o1", json.RawMessage(`{"status":"pending","total":"10"}`)))

	require.NoError(t, m.Update(ctx, "orders", "o1", map[string]any{"status": "shipped"}))

	doc, err := m.Get(ctx, "orders", "o1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"shipped","total":"10"}`, string(doc.Data))

	err = m.Update(ctx, "orders", "missing", map[string]any{"status": "shipped"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryWhere(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "users", "1", json.RawMessage(`{"username":"ana","age":3}`)))
	require.NoError(t, m.Set(ctx, "users", "2", json.RawMessage(`{"username": "bo"}`)))

	docs, err := m.Where(ctx, "users", "username", "bo")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "2", docs[0].ID)

	docs, err = m.Where(ctx, "users", "age", 3)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "1", docs[0].ID)
}

func TestMemoryHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemory().List(ctx, "products")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPath(t *testing.T) {
	assert.Equal(t, "users/u1/cart", Path("users", "u1", "cart"))
}
