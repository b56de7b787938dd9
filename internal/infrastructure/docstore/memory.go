package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrInvalidDocument = errors.New("invalid json document")

type memCollection struct {
	order []string
	docs  map[string]json.RawMessage
}

// Memory is an in-process Store used for local runs and tests.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

func NewMemory() *Memory {
	return &Memory{collections: map[string]*memCollection{}}
}

func (m *Memory) collection(name string, create bool) *memCollection {
	c, ok := m.collections[name]
	if !ok && create {
		c = &memCollection{docs: map[string]json.RawMessage{}}
		m.collections[name] = c
	}
	return c
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := m.collection(collection, false)
	if c == nil {
		return Document{}, ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: clone(data)}, nil
}

func (m *Memory) List(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := m.collection(collection, false)
	if c == nil {
		return []Document{}, nil
	}
	out := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Document{ID: id, Data: clone(c.docs[id])})
	}
	return out, nil
}

func (m *Memory) Where(ctx context.Context, collection, field string, value any) ([]Document, error) {
	want, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	docs, err := m.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0)
	for _, d := range docs {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(d.Data, &fields); err != nil {
			return nil, err
		}
		got, ok := fields[field]
		if !ok {
			continue
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, got); err != nil {
			return nil, err
		}
		if bytes.Equal(compact.Bytes(), want) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Memory) Create(ctx context.Context, collection string, data json.RawMessage) (string, error) {
	id := uuid.NewString()
	if err := m.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Memory) Set(ctx context.Context, collection, id string, data json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(data) {
		return ErrInvalidDocument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collection(collection, true)
	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = clone(data)
	return nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collection(collection, false)
	if c == nil {
		return ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return err
	}
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		merged[k] = b
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	c.docs[id] = out
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collection(collection, false)
	if c == nil {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func clone(b json.RawMessage) json.RawMessage {
	out := make(json.RawMessage, len(b))
	copy(out, b)
	return out
}

var _ Store = (*Memory)(nil)
