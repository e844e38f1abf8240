package debug

import (
	"log"
	"net/http"
	"strconv"
	"time"
)

// scrapeTimeoutHeader is sent by Prometheus on every scrape and carries the
// scrape_timeout configured for the job, in seconds.
const scrapeTimeoutHeader = "X-Prometheus-Scrape-Timeout-Seconds"

// responseWriter wraps http.ResponseWriter to capture status code and response size.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// Write captures the response size.
func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}

// LoggingMiddleware provides verbose HTTP request/response logging and metrics collection
// when debug mode is enabled. When disabled, it passes through with zero overhead.
//
// Logged information includes:
//   - Request: method, path, remote address
//   - Response: status code, size, duration
//   - Scrapes that ran longer than the scraper was willing to wait
//
// Example output:
//
//	[DEBUG] Request: method=GET path=/metrics remote=127.0.0.1:54321
//	[DEBUG] Response: method=GET path=/metrics status=200 size=1234 duration=45.2ms
func LoggingMiddleware(debugConfig *DebugConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// If debug not enabled, pass through immediately with zero overhead
		if !debugConfig.IsEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()

		// Log request
		log.Printf("[DEBUG] Request: method=%s path=%s remote=%s",
			r.Method, r.URL.Path, r.RemoteAddr)

		// Wrap response writer to capture status and size
		rw := &responseWriter{
			ResponseWriter: w,
			status:         http.StatusOK, // Default status if WriteHeader not called
		}

		// Call next handler
		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		// Log response
		log.Printf("[DEBUG] Response: method=%s path=%s status=%d size=%d duration=%v",
			r.Method, r.URL.Path, rw.status, rw.size, duration)

		// A response slower than the advertised scrape timeout was already
		// discarded on the Prometheus side, even though it got a 200 here.
		// Usually a sign the collection deadline is set above scrape_timeout.
		if limit := scrapeTimeout(r); limit > 0 && duration > limit {
			log.Printf("[DEBUG] Response outlived the scraper's timeout: path=%s duration=%v scrape_timeout=%v",
				r.URL.Path, duration, limit)
			debugConfig.RecordSlowResponse()
		}

		// Record metrics
		debugConfig.RecordRequest(r.URL.Path, duration)
	})
}

// scrapeTimeout parses the scrape timeout Prometheus advertises on each
// request. Zero means the header was absent or unusable.
func scrapeTimeout(r *http.Request) time.Duration {
	value := r.Header.Get(scrapeTimeoutHeader)
	if value == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
