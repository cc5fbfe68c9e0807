package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/creator-lounge/internal/service"
)

// ModerationHandler serves reports and user blocks.
type ModerationHandler struct {
	reports *service.ReportService
	blocks  *service.BlockService
	logger  *slog.Logger
}

func NewModerationHandler(reports *service.ReportService, blocks *service.BlockService, logger *slog.Logger) *ModerationHandler {
	return &ModerationHandler{reports: reports, blocks: blocks, logger: logger}
}

// HTTP: POST /api/reports
// REQUEST BODY: {"targetType":"POST","targetId":"...","reason":"SPAM","description":""}
func (h *ModerationHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	var in service.CreateReportInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	report, err := h.reports.Create(r.Context(), currentUserID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// HTTP: GET /api/reports/me
func (h *ModerationHandler) HandleMyReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.ListMine(r.Context(), currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// HTTP: POST /api/blocks/{userId}
func (h *ModerationHandler) HandleBlock(w http.ResponseWriter, r *http.Request) {
	block, err := h.blocks.Block(r.Context(), currentUserID(r), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

// HTTP: DELETE /api/blocks/{userId}
func (h *ModerationHandler) HandleUnblock(w http.ResponseWriter, r *http.Request) {
	if err := h.blocks.Unblock(r.Context(), currentUserID(r), chi.URLParam(r, "userId")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HTTP: GET /api/blocks
func (h *ModerationHandler) HandleListBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.blocks.ListBlocked(r.Context(), currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blocks)
}
