package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/creator-lounge/internal/service"
)

type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// HandleList returns active posts newest first.
//
// HTTP: GET /api/posts?channel=lounge-1k&hashtag=go&author=<id>&limit=20&offset=0
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	channel := q.Get("channel")
	if channel == "" {
		channel = q.Get("channelId")
	}

	posts, err := h.posts.List(r.Context(), service.ListPostsInput{
		Channel:  channel,
		AuthorID: q.Get("author"),
		Hashtag:  q.Get("hashtag"),
		ViewerID: currentUserID(r),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// HTTP: GET /api/posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"), currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleCreate
//
// HTTP: POST /api/posts
// REQUEST BODY: {"channelId":"lounge-1k","title":"...","content":"...","imageUrls":[],"hashtags":[]}
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CreatePostInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	post, err := h.posts.Create(r.Context(), currentUserID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// HTTP: PATCH /api/posts/{id}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.UpdatePostInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	post, err := h.posts.Update(r.Context(), currentUserID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HTTP: DELETE /api/posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), currentUserID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HTTP: POST /api/posts/{id}/like
func (h *PostHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	res, err := h.posts.ToggleLike(r.Context(), currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
