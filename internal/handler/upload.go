package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/service"
)

const multipartOverhead = 1 << 20

type UploadHandler struct {
	uploads  *service.UploadService
	maxBytes int64
	logger   *slog.Logger
}

func NewUploadHandler(uploads *service.UploadService, maxBytes int64, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{uploads: uploads, maxBytes: maxBytes, logger: logger}
}

// HandleUpload accepts one image in the "file" form field and stores it.
//
// HTTP: POST /api/uploads (multipart/form-data)
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, apperror.ValidationFailed("file", "file is too large"))
			return
		}
		writeError(w, apperror.ValidationFailed("file", "file field is required"))
		return
	}
	defer file.Close()

	res, err := h.uploads.Upload(r.Context(), currentUserID(r), header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// HandlePresign returns a presigned PUT for a direct browser upload.
//
// HTTP: POST /api/uploads/presign
// REQUEST BODY: {"contentType":"image/png","size":12345}
func (h *UploadHandler) HandlePresign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContentType string `json:"contentType"`
		Size        int64  `json:"size"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.uploads.Presign(r.Context(), currentUserID(r), req.ContentType, req.Size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
