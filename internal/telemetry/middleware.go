package telemetry

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"
)

type statsKey struct{}

// requestStats carries business counts from handlers back to the middleware
type requestStats struct {
	eventCount int
	alertCount int
}

// TelemetryMiddleware wraps HTTP handlers to automatically collect telemetry
type TelemetryMiddleware struct {
	telemetry *ApiTelemetry
}

func NewTelemetryMiddleware(telemetry *ApiTelemetry) *TelemetryMiddleware {
	return &TelemetryMiddleware{
		telemetry: telemetry,
	}
}

// Middleware returns the HTTP middleware function
func (tm *TelemetryMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		stats := &requestStats{}
		ctx := context.WithValue(r.Context(), statsKey{}, stats)

		clientIP := getClientIP(r)
		metrics := ApiMetrics{
			Method:       r.Method,
			Endpoint:     GetEndpointFromPath(r.URL.Path),
			ClientIP:     clientIP,
			ClientIPType: NormalizeClientIP(clientIP),
		}

		next.ServeHTTP(wrapper, r.WithContext(ctx))

		metrics.StatusCode = wrapper.statusCode
		metrics.Duration = time.Since(start)
		metrics.EventCount = stats.eventCount
		metrics.AlertCount = stats.alertCount

		if wrapper.statusCode >= 400 {
			metrics.ErrorMessage = "HTTP " + strconv.Itoa(wrapper.statusCode) + " " + http.StatusText(wrapper.statusCode)
			tm.telemetry.RegisterRequestError(ctx, metrics)
		} else {
			tm.telemetry.RegisterRequestReceived(ctx, metrics)
		}

		tm.telemetry.RegisterRequestDuration(ctx, metrics)
	})
}

// getClientIP reads the peer address. chi's RealIP middleware runs first and
// has already replaced RemoteAddr with the forwarded client address.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(data []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(data)
}

// Flush lets long-poll handlers push partial responses through the wrapper
func (w *responseWriterWrapper) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// SetEventCount records how many events a poll returned
func SetEventCount(ctx context.Context, count int) {
	if stats, ok := ctx.Value(statsKey{}).(*requestStats); ok {
		stats.eventCount = count
	}
}

// SetAlertCount records how many alerts a generate call created
func SetAlertCount(ctx context.Context, count int) {
	if stats, ok := ctx.Value(statsKey{}).(*requestStats); ok {
		stats.alertCount = count
	}
}
