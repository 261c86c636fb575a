package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"inventory-dashboard-api/internal/models"
)

// RateLimitType defines the type of rate limiting
type RateLimitType string

const (
	RateLimitTypeIP     RateLimitType = "ip"
	RateLimitTypeGlobal RateLimitType = "global"
	RateLimitTypeBoth   RateLimitType = "both"
)

const globalKey = "global"

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	Type              RateLimitType
	RequestsPerMinute int
	WindowMinutes     int
	// WriteRequestsPerMinute applies to POST, PUT, PATCH and DELETE in a separate bucket
	WriteRequestsPerMinute int
}

// RateLimitEntry is one fixed-window counter
type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

// RateLimitInfo contains rate limit information for response headers
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetTime time.Time
}

// RateLimiter keeps fixed-window counters per client IP and globally
type RateLimiter struct {
	config  RateLimitConfig
	entries map[string]*RateLimitEntry
	mutex   sync.Mutex
	now     func() time.Time

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:      config,
		entries:     make(map[string]*RateLimitEntry),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	rl.cleanupTicker = time.NewTicker(time.Minute)
	go rl.cleanupExpiredEntries()

	slog.Info("Rate limiter initialized",
		"enabled", config.Enabled,
		"type", config.Type,
		"requests_per_minute", config.RequestsPerMinute,
		"write_requests_per_minute", config.WriteRequestsPerMinute,
		"window_minutes", config.WindowMinutes)

	return rl
}

// Stop stops the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		rl.cleanupTicker.Stop()
		close(rl.stopCleanup)
	})
}

func (rl *RateLimiter) cleanupExpiredEntries() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			rl.mutex.Lock()
			now := rl.now()
			for key, entry := range rl.entries {
				if now.After(entry.ResetTime) {
					delete(rl.entries, key)
				}
			}
			rl.mutex.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}

// IsAllowed counts one request from clientIP and reports whether it is within limits
func (rl *RateLimiter) IsAllowed(clientIP string, isWrite bool) (bool, *RateLimitInfo) {
	if !rl.config.Enabled {
		return true, &RateLimitInfo{Limit: -1, Remaining: -1}
	}

	limit := rl.config.RequestsPerMinute
	scope := "read"
	if isWrite && rl.config.WriteRequestsPerMinute > 0 {
		limit = rl.config.WriteRequestsPerMinute
		scope = "write"
	}

	window := time.Duration(rl.config.WindowMinutes) * time.Minute
	now := rl.now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	var keys []string
	switch rl.config.Type {
	case RateLimitTypeGlobal:
		keys = []string{globalKey + "|" + scope}
	case RateLimitTypeBoth:
		keys = []string{clientIP + "|" + scope, globalKey + "|" + scope}
	default:
		keys = []string{clientIP + "|" + scope}
	}

	// check every bucket before counting so a rejected request consumes nothing
	var info *RateLimitInfo
	allowed := true
	for _, key := range keys {
		entry := rl.entry(key, window, now)
		current := &RateLimitInfo{
			Limit:     limit,
			Remaining: limit - entry.Count,
			ResetTime: entry.ResetTime,
		}
		if entry.Count >= limit {
			allowed = false
		}
		if info == nil || current.Remaining < info.Remaining {
			info = current
		}
	}

	if !allowed {
		info.Remaining = 0
		return false, info
	}

	for _, key := range keys {
		rl.entries[key].Count++
	}
	info.Remaining--
	return true, info
}

// entry returns the bucket for key, opening a new window when the old one expired
func (rl *RateLimiter) entry(key string, window time.Duration, now time.Time) *RateLimitEntry {
	entry, ok := rl.entries[key]
	if !ok || now.After(entry.ResetTime) {
		entry = &RateLimitEntry{ResetTime: now.Add(window)}
		rl.entries[key] = entry
	}
	return entry
}

// RateLimitMiddleware creates a rate limiting middleware using an existing rate limiter
func RateLimitMiddleware(rateLimiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := getClientIP(r)
			isWrite := isWriteMethod(r.Method)

			allowed, info := rateLimiter.IsAllowed(clientIP, isWrite)
			setRateLimitHeaders(w, info)

			if !allowed {
				slog.Warn("Rate limit exceeded",
					"client_ip", clientIP,
					"path", r.URL.Path,
					"method", r.Method,
					"is_write", isWrite,
					"limit", info.Limit,
					"reset_time", info.ResetTime.Format(time.RFC3339))

				writeRateLimitErrorResponse(w, info)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// getClientIP reads the peer address already rewritten by chi's RealIP middleware
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func setRateLimitHeaders(w http.ResponseWriter, info *RateLimitInfo) {
	if info.Limit < 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	if !info.ResetTime.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

func writeRateLimitErrorResponse(w http.ResponseWriter, info *RateLimitInfo) {
	retryAfter := "0"
	if !info.ResetTime.IsZero() {
		retryAfter = fmt.Sprintf("%.0f", time.Until(info.ResetTime).Seconds())
		w.Header().Set("Retry-After", retryAfter)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	errorResp := models.ErrorResponse{
		Code:    "rate_limit_exceeded",
		Message: "Rate limit exceeded. Please try again later.",
		Details: []models.ErrorDetail{
			{
				Field: "rate_limit",
				Issue: fmt.Sprintf("Exceeded %d requests per window", info.Limit),
			},
			{
				Field: "retry_after",
				Issue: fmt.Sprintf("Retry after %s seconds", retryAfter),
			},
		},
	}

	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		slog.Error("Failed to encode rate limit response", "error", err)
	}
}
