package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/auth"
	"github.com/sakif/creator-lounge/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}

func TestLogger_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/brew", nil))

	out := buf.String()
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "path=/brew")
	assert.Contains(t, out, "bytes=15")
	assert.Contains(t, out, "level=WARN")
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2, discardLogger())(okHandler())

	codes := make([]int, 3)
	for i := range codes {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
		codes[i] = rr.Code
	}

	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:3000/"})(okHandler())

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/channels", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.True(t, strings.Contains(rr.Header().Get("Access-Control-Allow-Methods"), "PATCH"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/channels", nil)
		req.Header.Set("Origin", "https://evil.example")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "ok", rr.Body.String())
	})
}

type stubUsers map[string]*model.User

func (s stubUsers) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "broken" {
		return nil, errors.New("database is locked")
	}
	u, ok := s[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

func TestActiveUser(t *testing.T) {
	withdrawnAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	users := stubUsers{
		"alive": {ID: "alive", Status: model.UserStatusActive},
		"gone":  {ID: "gone", Status: model.UserStatusWithdrawn, DeletedAt: &withdrawnAt},
	}
	h := ActiveUser(users, discardLogger())(okHandler())

	tests := []struct {
		userID string
		want   int
	}{
		{"alive", http.StatusOK},
		{"gone", http.StatusUnauthorized},
		{"missing", http.StatusUnauthorized},
		{"broken", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/posts/p1/like", nil)
			req = req.WithContext(auth.WithUserID(req.Context(), tt.userID))
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
