package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/creator-lounge/internal/service"
)

type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleMe returns the caller with linked accounts and best subscriber count.
//
// HTTP: GET /api/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	me, err := h.users.GetMe(r.Context(), currentUserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, me)
}

// HandleUpdateNickname
//
// HTTP: PATCH /api/me
// REQUEST BODY: {"nickname": "창작자"}
func (h *UserHandler) HandleUpdateNickname(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := h.users.UpdateNickname(r.Context(), currentUserID(r), req.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleWithdraw soft-deletes the caller.
//
// HTTP: DELETE /api/me
func (h *UserHandler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Withdraw(r.Context(), currentUserID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HTTP: GET /api/users/{id}
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.GetPublicProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
