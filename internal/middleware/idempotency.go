package middleware

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// idempotencyRecorder buffers the response so a successful one can be
// replayed for a retried request.
type idempotencyRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rec *idempotencyRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *idempotencyRecorder) Write(b []byte) (int, error) {
	rec.body.Write(b)
	return rec.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for POST requests repeating an
// Idempotency-Key, so network retries of record/submit calls do not double
// apply. Requests without the header pass through untouched. The original
// status code is stored with the body, so a replayed quiz start is still
// a 201.
func Idempotency(redisClient *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Idempotency-Key")
			if key == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			learnerID := GetLearnerID(r.Context())
			cacheKey := fmt.Sprintf("idempotency:%s:%s:%s", learnerID, r.URL.Path, key)

			if cached, err := redisClient.Get(r.Context(), cacheKey).Result(); err == nil {
				status, body := decodeIdempotent(cached)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Idempotent-Replay", "true")
				w.WriteHeader(status)
				io.WriteString(w, body)
				return
			}

			rec := &idempotencyRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			// Only successful outcomes are replayable; errors stay retryable.
			if rec.status >= 200 && rec.status < 300 {
				redisClient.Set(r.Context(), cacheKey, encodeIdempotent(rec.status, rec.body.String()), idempotencyTTL)
			}
		})
	}
}

// Stored value format: "<status>\n<body>".
func encodeIdempotent(status int, body string) string {
	return strconv.Itoa(status) + "\n" + body
}

func decodeIdempotent(cached string) (int, string) {
	head, body, found := strings.Cut(cached, "\n")
	if !found {
		return http.StatusOK, cached
	}
	status, err := strconv.Atoi(head)
	if err != nil || status < 200 || status > 599 {
		return http.StatusOK, cached
	}
	return status, body
}
