package objectstore

import (
	"context"
	"errors"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-storefront/pkg/helpers"
)

// GCS stores objects in a Google Cloud Storage bucket.
type GCS struct {
	client    *storage.Client
	bucket    string
	projectID string
}

func NewGCS(client *storage.Client, bucket, projectID string) *GCS {
	return &GCS{client: client, bucket: bucket, projectID: projectID}
}

func (g *GCS) EnsureBucket(ctx context.Context) error {
	if g.client == nil || g.bucket == "" {
		return errors.New("gcs not configured")
	}
	b := g.client.Bucket(g.bucket)
	_, err := b.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return err
	}
	if g.projectID == "" {
		return errors.New("gcs bucket missing and GCS_PROJECT_ID not set")
	}
	return b.Create(ctx, g.projectID, &storage.BucketAttrs{})
}

type gcsWriter struct {
	*storage.Writer
	cancel context.CancelFunc
}

func (w *gcsWriter) Close() error {
	defer w.cancel()
	return w.Writer.Close()
}

// Abort cancels the upload context, which makes GCS drop the partial object.
func (w *gcsWriter) Abort() { w.cancel() }

func (g *GCS) NewWriter(ctx context.Context, objectPath, contentType string, chunkSize int) (Writer, error) {
	if g.client == nil || g.bucket == "" {
		return nil, errors.New("gcs not configured")
	}
	wctx, cancel := context.WithCancel(ctx)
	w := g.client.Bucket(g.bucket).Object(objectPath).NewWriter(wctx)
	w.ContentType = contentType
	if chunkSize < 0 {
		chunkSize = 0
	}
	// resumable upload flushing every chunkSize bytes; 0 is a single request
	w.ChunkSize = chunkSize
	return &gcsWriter{Writer: w, cancel: cancel}, nil
}

func (g *GCS) PublicURL(objectPath string) string {
	return helpers.PublicURL(g.bucket, objectPath)
}

var _ Storage = (*GCS)(nil)
