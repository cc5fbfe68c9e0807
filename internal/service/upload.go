package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/creator-lounge/internal/apperror"
)

// ObjectStore is where uploaded images live. internal/storage/s3 implements it.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, size int64, body io.Reader) error
	PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error)
	PublicURL(key string) string
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// UploadResult is returned for both direct and presigned uploads. UploadURL
// is only set for presigned ones.
type UploadResult struct {
	Key       string     `json:"key"`
	URL       string     `json:"url"`
	UploadURL string     `json:"uploadUrl,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type UploadService struct {
	store      ObjectStore
	maxBytes   int64
	presignTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func NewUploadService(store ObjectStore, maxBytes int64, presignTTL time.Duration, logger *slog.Logger) *UploadService {
	return &UploadService{
		store:      store,
		maxBytes:   maxBytes,
		presignTTL: presignTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Upload streams body to the store.
func (s *UploadService) Upload(ctx context.Context, userID, contentType string, size int64, body io.Reader) (*UploadResult, error) {
	key, contentType, err := s.newKey(userID, contentType, size)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, key, contentType, size, body); err != nil {
		return nil, fmt.Errorf("service/upload: storing %s: %w", key, err)
	}
	s.logger.Info("image uploaded", slog.String("key", key), slog.Int64("size", size))
	return &UploadResult{Key: key, URL: s.store.PublicURL(key)}, nil
}

// Presign returns a URL the browser can PUT the image to directly.
func (s *UploadService) Presign(ctx context.Context, userID, contentType string, size int64) (*UploadResult, error) {
	key, contentType, err := s.newKey(userID, contentType, size)
	if err != nil {
		return nil, err
	}
	uploadURL, err := s.store.PresignPut(ctx, key, contentType, size, s.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("service/upload: presigning %s: %w", key, err)
	}
	expiresAt := s.now().Add(s.presignTTL).UTC()
	return &UploadResult{
		Key:       key,
		URL:       s.store.PublicURL(key),
		UploadURL: uploadURL,
		ExpiresAt: &expiresAt,
	}, nil
}

// newKey validates the upload and builds images/<user>/<yyyy>/<mm>/<uuid>.<ext>.
// The returned content type is the normalized one the store must receive.
func (s *UploadService) newKey(userID, contentType string, size int64) (key, normalized string, err error) {
	normalized = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := imageExtensions[normalized]
	if !ok {
		return "", "", apperror.ValidationFailed("contentType", "only jpeg, png, gif and webp images are allowed")
	}
	if size <= 0 {
		return "", "", apperror.ValidationFailed("size", "file is empty")
	}
	if size > s.maxBytes {
		return "", "", apperror.ValidationFailed("size",
			fmt.Sprintf("file must be %dMB or smaller", s.maxBytes/(1<<20)))
	}

	t := s.now().UTC()
	key = path.Join("images", userID, t.Format("2006"), t.Format("01"), uuid.NewString()+"."+ext)
	return key, normalized, nil
}
