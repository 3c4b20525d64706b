package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"upfafrica-backend/internal/cache"
)

const (
	loginLimit   = 5
	loginWindow  = time.Minute
	resetLimit   = 5
	resetWindow  = time.Minute
	verifyLimit  = 10
	verifyWindow = time.Minute
)

// RateLimitLogin caps credential-guessing attempts per client IP.
func RateLimitLogin(cacheClient cache.Client) func(http.Handler) http.Handler {
	return limitByIP(cacheClient, "rl:login:", loginLimit, loginWindow)
}

// RateLimitReset caps forgot-password issuance per client IP so the mail
// channel cannot be used to flood a mailbox.
func RateLimitReset(cacheClient cache.Client) func(http.Handler) http.Handler {
	return limitByIP(cacheClient, "rl:reset:", resetLimit, resetWindow)
}

// RateLimitVerify caps code-guessing on validate-otp and reset-password.
// Paired with 6-character random codes this closes the brute-force window.
func RateLimitVerify(cacheClient cache.Client) func(http.Handler) http.Handler {
	return limitByIP(cacheClient, "rl:verify:", verifyLimit, verifyWindow)
}

func limitByIP(cacheClient cache.Client, prefix string, limit int64, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := prefix + clientIP(r)
			count, err := cacheClient.IncrWithTTL(key, window)
			if err == nil && count > limit {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
