package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/creator-lounge/internal/service"
)

type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// HandleList returns the comment tree of a post.
//
// HTTP: GET /api/posts/{id}/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByPost(r.Context(), chi.URLParam(r, "id"), currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HTTP: POST /api/posts/{id}/comments
// REQUEST BODY: {"content":"...","parentId":null,"imageUrls":[],"hashtags":[]}
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CreateCommentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	comment, err := h.comments.Create(r.Context(), currentUserID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HTTP: PATCH /api/comments/{id}
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateCommentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	comment, err := h.comments.Update(r.Context(), currentUserID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// HTTP: DELETE /api/comments/{id}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), currentUserID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HTTP: POST /api/comments/{id}/like
func (h *CommentHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	res, err := h.comments.ToggleLike(r.Context(), currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
