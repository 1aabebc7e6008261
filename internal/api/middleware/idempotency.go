// internal/api/middleware/idempotency.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"money-transfer-api/internal/api/types"
)

const (
	// IdempotencyHeader is the HTTP header carrying the client's idempotency key.
	IdempotencyHeader = "Idempotency-Key"

	// IdempotencyLockTimeout bounds how long an in-flight request holds its key.
	IdempotencyLockTimeout = 60 * time.Second

	idempotencyKeyPrefix  = "idempotency:"
	idempotencyLockPrefix = "idempotency:lock:"
	maxIdempotencyKeyLen  = 255
)

// cachedResponse is what gets stored for a completed request.
type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// responseRecorder captures the status code and body while writing through.
type responseRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	body        bytes.Buffer
}

func (rw *responseRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a previous request carrying the
// same Idempotency-Key for the same user. Requests without the header, or a
// nil client, pass straight through. Must run after Authenticate.
func Idempotency(rdb redis.UniversalClient, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if rdb == nil || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLen {
				_ = types.WriteError(w, http.StatusBadRequest, "Idempotency-Key is too long")
				return
			}

			userID, _ := GetUserIDFromContext(r.Context())
			scoped := fmt.Sprintf("%d:%s", userID, key)
			cacheKey := idempotencyKeyPrefix + scoped
			lockKey := idempotencyLockPrefix + scoped
			ctx := context.WithoutCancel(r.Context())

			raw, err := rdb.Get(ctx, cacheKey).Bytes()
			switch {
			case err == nil:
				var cached cachedResponse
				if err := json.Unmarshal(raw, &cached); err == nil {
					logger.Info("Idempotent replay", "user_id", userID, "idempotency_key", key)
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("X-Idempotency-Replayed", "true")
					w.WriteHeader(cached.Status)
					_, _ = w.Write(cached.Body)
					return
				}
				logger.Warn("Discarding unreadable idempotency entry", "idempotency_key", key)
			case !errors.Is(err, redis.Nil):
				logger.Error("Idempotency lookup failed", "idempotency_key", key, "error", err)
				_ = types.WriteError(w, http.StatusServiceUnavailable, "Unable to process request, please retry")
				return
			}

			acquired, err := rdb.SetNX(ctx, lockKey, "processing", IdempotencyLockTimeout).Result()
			if err != nil {
				logger.Error("Idempotency lock acquisition failed", "idempotency_key", key, "error", err)
				_ = types.WriteError(w, http.StatusServiceUnavailable, "Unable to process request, please retry")
				return
			}
			if !acquired {
				_ = types.WriteError(w, http.StatusConflict, "A request with this idempotency key is currently being processed")
				return
			}
			defer func() {
				if err := rdb.Del(ctx, lockKey).Err(); err != nil {
					logger.Warn("Failed to release idempotency lock", "idempotency_key", key, "error", err)
				}
			}()

			rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.statusCode < 200 || rec.statusCode >= 300 {
				return
			}
			entry, err := json.Marshal(cachedResponse{Status: rec.statusCode, Body: rec.body.Bytes()})
			if err != nil {
				logger.Warn("Failed to encode idempotent response", "idempotency_key", key, "error", err)
				return
			}
			if err := rdb.Set(ctx, cacheKey, entry, ttl).Err(); err != nil {
				logger.Warn("Failed to cache idempotent response", "idempotency_key", key, "error", err)
			}
		})
	}
}
