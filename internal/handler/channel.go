package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/creator-lounge/internal/service"
)

type ChannelHandler struct {
	channels *service.ChannelService
	logger   *slog.Logger
}

func NewChannelHandler(channels *service.ChannelService, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{channels: channels, logger: logger}
}

// HTTP: GET /api/channels
func (h *ChannelHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	channels, err := h.channels.ListChannels(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, channels)
}

// HandleGet accepts either the id or the slug.
//
// HTTP: GET /api/channels/{id}
func (h *ChannelHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channels.GetChannel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, channel)
}

// HandleAccessible evaluates the caller's current subscriber count.
//
// HTTP: GET /api/channels/accessible
func (h *ChannelHandler) HandleAccessible(w http.ResponseWriter, r *http.Request) {
	channels, err := h.channels.GetAccessibleChannelsForUser(r.Context(), currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, channels)
}

// HTTP: GET /api/channels/my-access
func (h *ChannelHandler) HandleMyAccess(w http.ResponseWriter, r *http.Request) {
	grants, err := h.channels.ListMyAccesses(r.Context(), currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grants)
}

// HandleCheckAccess reports the cached grant for one channel.
//
// HTTP: GET /api/channels/{id}/access
func (h *ChannelHandler) HandleCheckAccess(w http.ResponseWriter, r *http.Request) {
	channel, err := h.channels.GetChannel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	ok, err := h.channels.CheckAccess(r.Context(), currentUserID(r), channel.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"channelId": channel.ID, "hasAccess": ok})
}

// HTTP: POST /api/channels/refresh-access
func (h *ChannelHandler) HandleRefreshAccess(w http.ResponseWriter, r *http.Request) {
	grants, err := h.channels.RefreshAccessForUser(r.Context(), currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grants)
}
