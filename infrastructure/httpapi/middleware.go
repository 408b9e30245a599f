package httpapi

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-underwrite/internal/logging"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestContext assigns every request a correlation id, exposes it as
// the X-Request-ID response header, and records duration and status
// once the handler returns. It is the outermost wrapper so rejected
// and panicking requests are still logged and counted.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		logger := s.logger.With("request_id", requestID)
		ctx := logging.WithContext(r.Context(), logger)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))
		elapsed := time.Since(start)

		durationMS := math.Round(float64(elapsed.Nanoseconds())/1e6*100) / 100
		s.aggregator.RecordRequest(durationMS)
		if s.collector != nil {
			labels := map[string]string{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": strconv.Itoa(rec.status),
			}
			s.collector.RecordLatency("http_request", elapsed, labels)
			s.collector.RecordCounter("underwrite_http_requests_total", 1, labels)
		}

		logger.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rec.status,
			"duration_ms", durationMS,
		)
	})
}

// recoverPanics converts handler panics into opaque 500 responses so
// one bad request cannot take down the listener.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logging.FromContext(r.Context()).Error("handler panic", "panic", v)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// rateLimit answers 429 once the configured request budget is spent.
// A nil limiter disables the check entirely.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
