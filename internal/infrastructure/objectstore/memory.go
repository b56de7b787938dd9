package objectstore

import (
	"bytes"
	"context"
	"errors"
	"sync"
)

// ErrInjected is returned by Memory when FailAfterWrites is reached.
var ErrInjected = errors.New("objectstore: injected write failure")

// Memory keeps objects in process. Used in tests and STORE_DRIVER=memory runs.
type Memory struct {
	mu      sync.Mutex
	bucket  string
	exists  bool
	objects map[string]Object

	// BucketChecks counts EnsureBucket calls that reached the backend.
	BucketChecks int
	// FailAfterWrites makes the n-th Write call (1-based) fail when > 0.
	FailAfterWrites int
}

type Object struct {
	ContentType string
	Data        []byte
	// ChunkSize is the chunk size the writer was opened with.
	ChunkSize int
}

func NewMemory(bucket string) *Memory {
	return &Memory{bucket: bucket, objects: map[string]Object{}}
}

func (m *Memory) EnsureBucket(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BucketChecks++
	m.exists = true
	return nil
}

func (m *Memory) BucketExists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exists
}

func (m *Memory) Object(path string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[path]
	return o, ok
}

type memWriter struct {
	m           *Memory
	ctx         context.Context
	path        string
	contentType string
	chunkSize   int
	buf         bytes.Buffer
	writes      int
	aborted     bool
}

func (m *Memory) NewWriter(ctx context.Context, objectPath, contentType string, chunkSize int) (Writer, error) {
	return &memWriter{m: m, ctx: ctx, path: objectPath, contentType: contentType, chunkSize: chunkSize}, nil
}

func (w *memWriter) Write(p []byte) (int, error) {
	if err := w.ctx.Err(); err != nil {
		return 0, err
	}
	w.writes++
	if w.m.FailAfterWrites > 0 && w.writes >= w.m.FailAfterWrites {
		return 0, ErrInjected
	}
	return w.buf.Write(p)
}

func (w *memWriter) Close() error {
	if w.aborted {
		return errors.New("objectstore: writer aborted")
	}
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	w.m.objects[w.path] = Object{ContentType: w.contentType, Data: w.buf.Bytes(), ChunkSize: w.chunkSize}
	return nil
}

func (w *memWriter) Abort() { w.aborted = true }

func (m *Memory) PublicURL(objectPath string) string {
	return "memory://" + m.bucket + "/" + objectPath
}

var _ Storage = (*Memory)(nil)
