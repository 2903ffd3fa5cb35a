package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/swiftvtu/swiftvtu-api/internal/pkg/response"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyPrefix    = "idempotency:v1:"
	inProgressMarker     = "__in_progress__"
)

type storedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// recordingWriter buffers the response so it can be replayed for duplicates.
type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency enforces idempotent semantics on unsafe methods by persisting
// responses in Redis keyed by the Idempotency-Key header. A replayed key
// returns the stored response; a key still in flight returns 409.
// With a nil client the middleware is a pass-through.
func Idempotency(cache *redis.Client, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cache == nil {
				next.ServeHTTP(w, r)
				return
			}

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(idempotencyKeyHeader)
			if key == "" {
				// Key is optional; callers that skip it accept the risk
				// of duplicate submission.
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			cacheKey := idempotencyPrefix + key

			cached, err := cache.Get(ctx, cacheKey).Result()
			if err == nil {
				if cached == inProgressMarker {
					response.Error(w, http.StatusConflict, "DUPLICATE_REQUEST", "A request with this idempotency key is still processing")
					return
				}

				var stored storedResponse
				if err := json.Unmarshal([]byte(cached), &stored); err != nil {
					log.Warn().Str("key", key).Err(err).Msg("Failed to decode stored idempotent response")
					response.Error(w, http.StatusConflict, "DUPLICATE_REQUEST", "Duplicate request")
					return
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(stored.Status)
				w.Write([]byte(stored.Body))
				return
			}

			if err != redis.Nil {
				log.Error().Str("key", key).Err(err).Msg("Idempotency lookup failed")
				response.InternalError(w)
				return
			}

			// A lost reservation means another request with the same key
			// got between our Get and the SetNX; treat it like the
			// in-progress case above.
			reserved, err := cache.SetNX(ctx, cacheKey, inProgressMarker, ttl).Result()
			if err != nil {
				log.Error().Str("key", key).Err(err).Msg("Idempotency reservation failed")
				response.InternalError(w)
				return
			}
			if !reserved {
				response.Error(w, http.StatusConflict, "DUPLICATE_REQUEST", "A request with this idempotency key is still processing")
				return
			}

			rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			persistCtx, persistCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer persistCancel()

			// Only completed outcomes are replayable; server faults release
			// the key so the caller may retry.
			if rec.status >= http.StatusInternalServerError {
				cache.Del(persistCtx, cacheKey)
				return
			}

			payload, err := json.Marshal(storedResponse{Status: rec.status, Body: rec.body.String()})
			if err != nil {
				log.Error().Str("key", key).Err(err).Msg("Failed to encode idempotent response")
				cache.Del(persistCtx, cacheKey)
				return
			}

			if err := cache.Set(persistCtx, cacheKey, payload, ttl).Err(); err != nil {
				log.Error().Str("key", key).Err(err).Msg("Failed to persist idempotent response")
				cache.Del(persistCtx, cacheKey)
			}
		})
	}
}
