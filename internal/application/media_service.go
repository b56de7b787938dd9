package application

import (
	"context"
	"encoding/base64"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/infrastructure/objectstore"
)

const defaultChunkSize = 1 << 20

// UploadInput is one image to store. Either Data or Base64 must be set;
// Base64 may carry a data URI prefix.
type UploadInput struct {
	Data        []byte
	Base64      string
	Filename    string
	ContentType string
	// Chunked writes fixed-size chunks sequentially and reports Progress
	// after each one. Otherwise the object is written in one call.
	Chunked  bool
	Progress func(percent int)
}

type MediaService struct {
	Storage   objectstore.Storage
	Users     *UserService
	ChunkSize int
	Logger    *logrus.Logger

	mu          sync.Mutex
	bucketReady bool
}

func NewMediaService(storage objectstore.Storage, users *UserService, chunkSize int, logger *logrus.Logger) *MediaService {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &MediaService{Storage: storage, Users: users, ChunkSize: chunkSize, Logger: logger}
}

// UploadAvatar stores the image under avatars/<uid>/ and points the profile at it.
func (s *MediaService) UploadAvatar(ctx context.Context, sess *Session, in UploadInput) (*entity.User, error) {
	if err := sess.RequireMember(); err != nil {
		return nil, err
	}
	url, err := s.Upload(ctx, path.Join("avatars", sess.UserID), in)
	if err != nil {
		return nil, err
	}
	return s.Users.SetAvatar(ctx, sess, url)
}

// UploadProductImage stores an admin supplied product image under products/.
func (s *MediaService) UploadProductImage(ctx context.Context, sess *Session, in UploadInput) (string, error) {
	if err := sess.RequireAdmin(); err != nil {
		return "", err
	}
	return s.Upload(ctx, "products", in)
}

// Upload validates the payload as an image, writes it under folder and
// returns its public URL. A failed write aborts the object; there is no resume.
func (s *MediaService) Upload(ctx context.Context, folder string, in UploadInput) (string, error) {
	if s.Storage == nil {
		return "", ErrStorageUnavailable
	}
	data, hint, err := payload(in)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fieldError("file", "is required")
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrUnsupportedMedia
	}
	if hint != "" && !strings.HasPrefix(strings.ToLower(hint), "image/") {
		return "", ErrUnsupportedMedia
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	if ext == "" {
		ext = mt.Extension()
	}
	objectPath := path.Join(folder, uuid.NewString()+ext)
	contentType := strings.SplitN(mt.String(), ";", 2)[0]

	w, err := s.Storage.NewWriter(ctx, objectPath, contentType, s.uploadChunkSize(in))
	if err != nil {
		return "", err
	}
	if err := s.write(w, data, in); err != nil {
		w.Abort()
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("object", objectPath).Warn("upload aborted")
		}
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return s.Storage.PublicURL(objectPath), nil
}

func (s *MediaService) write(w objectstore.Writer, data []byte, in UploadInput) error {
	progress := in.Progress
	if progress == nil {
		progress = func(int) {}
	}
	if !in.Chunked {
		if _, err := w.Write(data); err != nil {
			return err
		}
		progress(100)
		return nil
	}
	size := s.uploadChunkSize(in)
	total := len(data)
	for off := 0; off < total; off += size {
		end := off + size
		if end > total {
			end = total
		}
		if _, err := w.Write(data[off:end]); err != nil {
			return err
		}
		progress(end * 100 / total)
	}
	return nil
}

// uploadChunkSize is 0 for a single put.
func (s *MediaService) uploadChunkSize(in UploadInput) int {
	if !in.Chunked {
		return 0
	}
	if s.ChunkSize <= 0 {
		return defaultChunkSize
	}
	return s.ChunkSize
}

// ensureBucket checks the bucket once per process. A failed check is retried
// on the next upload.
func (s *MediaService) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bucketReady {
		return nil
	}
	if err := s.Storage.EnsureBucket(ctx); err != nil {
		return err
	}
	s.bucketReady = true
	return nil
}

// payload returns the raw bytes and any content type declared by the caller.
func payload(in UploadInput) ([]byte, string, error) {
	hint := in.ContentType
	if len(in.Data) > 0 {
		return in.Data, hint, nil
	}
	raw := strings.TrimSpace(in.Base64)
	if raw == "" {
		return nil, hint, nil
	}
	if strings.HasPrefix(raw, "data:") {
		head, body, ok := strings.Cut(raw, ",")
		if !ok {
			return nil, "", fieldError("file", "invalid data uri")
		}
		if hint == "" {
			hint = strings.SplitN(strings.TrimPrefix(head, "data:"), ";", 2)[0]
		}
		raw = body
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", fieldError("file", "invalid base64")
	}
	return data, hint, nil
}
