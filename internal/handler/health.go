package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by the database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandleHealth reports whether the database answers.
//
// HTTP: GET /health
func HandleHealth(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
