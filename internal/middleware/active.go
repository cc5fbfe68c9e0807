package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/auth"
	"github.com/sakif/creator-lounge/internal/model"
)

// UserLookup is the slice of the user repository ActiveUser needs.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// ActiveUser runs after auth.RequireAuth and rejects tokens whose subject
// withdrew or no longer exists. Tokens stay valid until they expire, so every
// protected route goes through this check.
func ActiveUser(users UserLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := auth.UserIDFromContext(r.Context())

			user, err := users.GetUserByID(r.Context(), userID)
			switch {
			case err == nil && !user.IsDeleted():
				next.ServeHTTP(w, r)
				return
			case err != nil && !errors.Is(err, apperror.ErrNotFound):
				logger.Error("looking up token subject",
					slog.String("userID", userID),
					slog.String("error", err.Error()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"internal_error","message":"An internal error occurred"}`))
				return
			}

			logger.Warn("token of inactive user rejected", slog.String("userID", userID))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized","message":"this account is no longer active"}`))
		})
	}
}
