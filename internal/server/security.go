package server

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/TrulyKing03/AVERTROX-QUEST-SYSTEM/internal/logger"
)

const (
	// Five failed key checks from one address inside the window raises an
	// alert; a thousand requests trips the limiter.
	failedAuthAlertThreshold = 5
	requestsPerWindow        = 1000
	detectorWindow           = 5 * time.Minute
	// Over-limit addresses keep hammering, so only every Nth refusal is
	// logged.
	rateLogSampleEvery = 100
)

// isPublicPath reports whether a path is served without an API key (health
// probes, metrics, version).
func isPublicPath(path string) bool {
	for _, public := range PublicPaths {
		if strings.HasPrefix(path, public) {
			return true
		}
	}
	return false
}

// AuthMiddleware checks the API key header on every non-public request. The
// comparison is constant-time; failures feed the suspicious-activity
// detector.
func AuthMiddleware(apiKey string, trustedProxies []string, detector *SuspiciousActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			providedKey := r.Header.Get(HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				ip := extractIP(r, trustedProxies)
				if detector != nil {
					detector.RecordFailedAuth(ip)
				}

				logger.FromContext(r.Context()).Warn(LogMsgAuthFailed,
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"has_key", providedKey != "",
					"ip", ip)

				http.Error(w, ErrMsgUnauthorized, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestSizeLimitMiddleware caps request body size. Action ingress and admin
// bodies are tiny; anything near the limit is not a legitimate client.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// SuspiciousActivityDetector keeps per-IP counters of failed auth attempts
// and request volume over a sliding window.
type SuspiciousActivityDetector struct {
	mu               sync.Mutex
	failedAuthByIP   map[string]int
	requestCountByIP map[string]int
	windowStart      time.Time
}

func NewSuspiciousActivityDetector() *SuspiciousActivityDetector {
	return &SuspiciousActivityDetector{
		failedAuthByIP:   make(map[string]int),
		requestCountByIP: make(map[string]int),
		windowStart:      time.Now(),
	}
}

// RecordFailedAuth counts a rejected API key and alerts once the address
// crosses the threshold.
func (d *SuspiciousActivityDetector) RecordFailedAuth(ip string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rollWindowLocked()
	d.failedAuthByIP[ip]++

	if d.failedAuthByIP[ip] >= failedAuthAlertThreshold {
		slog.Warn(SecurityAlertFailedAuth,
			"ip", ip,
			"count", d.failedAuthByIP[ip])
	}
}

// RecordRequest counts a request against the window and reports whether the
// address is still under the rate limit.
func (d *SuspiciousActivityDetector) RecordRequest(ip string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.rollWindowLocked()
	d.requestCountByIP[ip]++

	if count := d.requestCountByIP[ip]; count > requestsPerWindow {
		if count%rateLogSampleEvery == 0 {
			slog.Warn(SecurityAlertHighRate,
				"ip", ip,
				"count_in_5min", count)
		}
		return false
	}
	return true
}

// rollWindowLocked discards the counters once the window has elapsed. Caller
// holds d.mu.
func (d *SuspiciousActivityDetector) rollWindowLocked() {
	if time.Since(d.windowStart) > detectorWindow {
		d.requestCountByIP = make(map[string]int)
		d.failedAuthByIP = make(map[string]int)
		d.windowStart = time.Now()
	}
}

// SecurityLoggingMiddleware enforces the per-IP rate limit before the request
// reaches a handler.
func SecurityLoggingMiddleware(trustedProxies []string, detector *SuspiciousActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := extractIP(r, trustedProxies)

			if !detector.RecordRequest(ip) {
				http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractIP resolves the client address. X-Forwarded-For is honored only when
// the direct peer is a configured trusted proxy; anyone else could forge it.
func extractIP(r *http.Request, trustedProxies []string) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	trusted := false
	for _, proxy := range trustedProxies {
		if proxy == remoteIP {
			trusted = true
			break
		}
	}

	if trusted {
		if forwarded := r.Header.Get(HeaderForwardedFor); forwarded != "" {
			// The rightmost entry is the peer that connected to our proxy;
			// everything left of it is client-controlled.
			ips := strings.Split(forwarded, ",")
			return strings.TrimSpace(ips[len(ips)-1])
		}
	}

	return remoteIP
}

// SecurityHeadersMiddleware sets the standard hardening headers on every
// response.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HeaderContentType, HeaderValueNoSniff)
			w.Header().Set(HeaderFrameOptions, HeaderValueSameOrigin)
			w.Header().Set(HeaderXSSProtection, HeaderValueXSSBlock)
			w.Header().Set(HeaderReferrerPolicy, HeaderValueReferrerStrictOrigin)

			next.ServeHTTP(w, r)
		})
	}
}
