package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/creator-lounge/internal/service"
)

type HashtagHandler struct {
	hashtags *service.HashtagService
	logger   *slog.Logger
}

func NewHashtagHandler(hashtags *service.HashtagService, logger *slog.Logger) *HashtagHandler {
	return &HashtagHandler{hashtags: hashtags, logger: logger}
}

// HTTP: GET /api/hashtags/popular?limit=10
func (h *HashtagHandler) HandlePopular(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	tags, err := h.hashtags.Popular(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// HTTP: GET /api/hashtags/search?q=go&limit=10
func (h *HashtagHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	tags, err := h.hashtags.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}
