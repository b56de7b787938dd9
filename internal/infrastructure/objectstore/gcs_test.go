package objectstore

import (
	"context"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// newOfflineGCS builds a client that never reaches the network; writers
// are only inspected, never flushed.
func newOfflineGCS(t *testing.T) *GCS {
	t.Helper()
	client, err := storage.NewClient(context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint("http://127.0.0.1:1/storage/v1/"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewGCS(client, "shop-media", "proj")
}

func TestGCSWriterChunkSize(t *testing.T) {
	g := newOfflineGCS(t)
	ctx := context.Background()

	w, err := g.NewWriter(ctx, "products/a.png", "image/png", 1<<20)
	require.NoError(t, err)
	gw := w.(*gcsWriter)
	assert.Equal(t, 1<<20, gw.ChunkSize)
	assert.Equal(t, "image/png", gw.ContentType)
	gw.Abort()

	w, err = g.NewWriter(ctx, "products/b.png", "image/png", 0)
	require.NoError(t, err)
	assert.Zero(t, w.(*gcsWriter).ChunkSize)
	w.Abort()
}

func TestGCSPublicURL(t *testing.T) {
	g := newOfflineGCS(t)
	assert.Equal(t, "https://storage.googleapis.com/shop-media/products/a.png", g.PublicURL("products/a.png"))
}
