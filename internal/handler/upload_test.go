package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/creator-lounge/internal/auth"
	"github.com/sakif/creator-lounge/internal/service"
)

type recordingStore struct {
	keys  []string
	sizes []int64
}

func (s *recordingStore) Put(ctx context.Context, key, contentType string, size int64, body io.Reader) error {
	n, err := io.Copy(io.Discard, body)
	s.keys = append(s.keys, key)
	s.sizes = append(s.sizes, n)
	return err
}

func (s *recordingStore) PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error) {
	return "https://bucket.example/" + key, nil
}

func (s *recordingStore) PublicURL(key string) string { return "https://cdn.example/" + key }

func newUploadHandler(store service.ObjectStore, maxBytes int64) *UploadHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uploads := service.NewUploadService(store, maxBytes, time.Minute, logger)
	return NewUploadHandler(uploads, maxBytes, logger)
}

func multipartRequest(t *testing.T, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="pic"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req.WithContext(auth.WithUserID(req.Context(), "u1"))
}

func TestHandleUpload(t *testing.T) {
	store := &recordingStore{}
	h := newUploadHandler(store, 1024)

	rr := httptest.NewRecorder()
	h.HandleUpload(rr, multipartRequest(t, "image/png", []byte("fake png bytes")))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var res service.UploadResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, "https://cdn.example/"+res.Key, res.URL)
	assert.Nil(t, res.ExpiresAt)
	require.Len(t, store.keys, 1)
	assert.Equal(t, int64(len("fake png bytes")), store.sizes[0])
}

func TestHandleUpload_Rejected(t *testing.T) {
	t.Run("unsupported type", func(t *testing.T) {
		store := &recordingStore{}
		rr := httptest.NewRecorder()
		newUploadHandler(store, 1024).HandleUpload(rr, multipartRequest(t, "application/pdf", []byte("%PDF")))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, store.keys)
	})

	t.Run("too large", func(t *testing.T) {
		store := &recordingStore{}
		rr := httptest.NewRecorder()
		newUploadHandler(store, 8).HandleUpload(rr, multipartRequest(t, "image/png", bytes.Repeat([]byte{1}, 64)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, store.keys)
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/uploads", nil)
		rr := httptest.NewRecorder()
		newUploadHandler(&recordingStore{}, 1024).HandleUpload(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
