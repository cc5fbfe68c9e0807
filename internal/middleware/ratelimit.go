package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit caps the whole API at perMinute requests with a burst of the
// same size. Rejected requests get 429 and a Retry-After hint. A
// non-positive limit disables it.
func RateLimit(perMinute int, logger *slog.Logger) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.Warn("rate limit exceeded",
					slog.String("path", r.URL.Path),
					slog.String("remoteAddr", r.RemoteAddr),
				)
				retry := time.Minute / time.Duration(perMinute)
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate_limited","message":"too many requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
