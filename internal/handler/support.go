package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/creator-lounge/internal/service"
)

type SupportHandler struct {
	support *service.SupportService
	logger  *slog.Logger
}

func NewSupportHandler(support *service.SupportService, logger *slog.Logger) *SupportHandler {
	return &SupportHandler{support: support, logger: logger}
}

// HTTP: GET /api/faqs?category=account
func (h *SupportHandler) HandleFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.support.ListFAQs(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, faqs)
}

// HTTP: POST /api/inquiries
func (h *SupportHandler) HandleCreateInquiry(w http.ResponseWriter, r *http.Request) {
	var in service.CreateInquiryInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	inquiry, err := h.support.CreateInquiry(r.Context(), currentUserID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inquiry)
}

// HTTP: GET /api/inquiries
func (h *SupportHandler) HandleListInquiries(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, err)
		return
	}
	inquiries, err := h.support.ListMyInquiries(r.Context(), currentUserID(r), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inquiries)
}

// HTTP: GET /api/inquiries/{id}
func (h *SupportHandler) HandleGetInquiry(w http.ResponseWriter, r *http.Request) {
	inquiry, err := h.support.GetInquiry(r.Context(), currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inquiry)
}

// HandleAnswer is admin only; the service checks the role.
//
// HTTP: POST /api/inquiries/{id}/answer
// REQUEST BODY: {"answer":"..."}
func (h *SupportHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answer string `json:"answer"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	inquiry, err := h.support.AnswerInquiry(r.Context(), currentUserID(r), chi.URLParam(r, "id"), req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inquiry)
}
