package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"gadgetplan-api/utils"
)

type RateLimiter struct {
	client  *redis.Client
	configs map[string]RateLimitConfig
	trusted []*net.IPNet
	now     func() time.Time
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Message  string
	// PerIdentifier adds a second budget keyed on the identifier in the
	// JSON body, shared by every client address.
	PerIdentifier bool
}

const maxPeekBody = 64 << 10

var defaultConfigs = map[string]RateLimitConfig{
	"/api/auth/send-otp": {
		Requests:      5,
		Window:        15 * time.Minute,
		Message:       "Too many code requests. Please try again in 15 minutes.",
		PerIdentifier: true,
	},
	"/api/auth/verify-otp": {
		Requests:      10,
		Window:        15 * time.Minute,
		Message:       "Too many verification attempts. Please try again in 15 minutes.",
		PerIdentifier: true,
	},
	"/api/auth/refresh": {
		Requests: 10,
		Window:   5 * time.Minute,
		Message:  "Too many token refresh attempts. Please wait 5 minutes.",
	},
	"default": {
		Requests: 60,
		Window:   time.Minute,
		Message:  "Rate limit exceeded. Please slow down your requests.",
	},
}

// Fixed window counter: the first hit of a window creates the key with
// the window as its TTL.
var fixedWindowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return current
`)

func NewRateLimiter(client *redis.Client) *RateLimiter {
	configs := make(map[string]RateLimitConfig, len(defaultConfigs))
	for k, v := range defaultConfigs {
		configs[k] = v
	}
	return &RateLimiter{client: client, configs: configs, now: time.Now}
}

// SetConfig overrides the limit for one path, or "default".
func (rl *RateLimiter) SetConfig(path string, cfg RateLimitConfig) {
	rl.configs[path] = cfg
}

// TrustProxies lists the proxies, as IPs or CIDRs, whose forwarding
// headers name the client. Requests from anywhere else are keyed on the
// socket address.
func (rl *RateLimiter) TrustProxies(proxies []string) error {
	trusted, err := ParseTrustedProxies(proxies)
	if err != nil {
		return err
	}
	rl.trusted = trusted
	return nil
}

// RateLimitMiddleware answers in the {error} shape the auth routes use.
// Redis failures let the request through.
func (rl *RateLimiter) RateLimitMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			config := rl.getConfigForEndpoint(r.URL.Path)
			ip := ClientIP(r, rl.trusted)

			subjects := []string{"ip:" + ip}
			if config.PerIdentifier {
				if identifier := peekIdentifier(r); identifier != "" {
					subjects = append(subjects, "id:"+identifier)
				}
			}

			allowed, remaining, resetTime, err := rl.checkSubjects(r.Context(), r.URL.Path, subjects, config)
			if err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("rate limit check failed, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Requests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				log.Warn().Str("ip", ip).Str("path", r.URL.Path).Msg("rate limit exceeded")

				retryAfter := int64(resetTime.Sub(rl.now()).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				utils.SendAuthError(w, http.StatusTooManyRequests, config.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) getConfigForEndpoint(path string) RateLimitConfig {
	if config, exists := rl.configs[path]; exists {
		return config
	}
	return rl.configs["default"]
}

// checkSubjects counts the request against every subject. The request
// passes only when all of them are within budget.
func (rl *RateLimiter) checkSubjects(ctx context.Context, path string, subjects []string, config RateLimitConfig) (allowed bool, remaining int, resetTime time.Time, err error) {
	allowed = true
	remaining = config.Requests
	for _, subject := range subjects {
		ok, left, reset, err := rl.checkRateLimit(ctx, path, subject, config)
		if err != nil {
			return false, 0, time.Time{}, err
		}
		if !ok {
			allowed = false
		}
		if left < remaining {
			remaining = left
		}
		resetTime = reset
	}
	return allowed, remaining, resetTime, nil
}

func (rl *RateLimiter) checkRateLimit(ctx context.Context, path, subject string, config RateLimitConfig) (allowed bool, remaining int, resetTime time.Time, err error) {
	windowStart := rl.now().Truncate(config.Window)
	resetTime = windowStart.Add(config.Window)
	key := fmt.Sprintf("rate_limit:%s:%s:%d", path, subject, windowStart.Unix())

	count, err := fixedWindowScript.Run(ctx, rl.client, []string{key}, config.Window.Milliseconds()).Int64()
	if err != nil {
		return false, 0, time.Time{}, err
	}

	remaining = config.Requests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return count <= int64(config.Requests), remaining, resetTime, nil
}

// peekIdentifier reads the identifier from a JSON body and puts the body
// back for the handler.
func peekIdentifier(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBody))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var payload struct {
		Identifier string `json:"identifier"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Identifier))
}

func ParseTrustedProxies(proxies []string) ([]*net.IPNet, error) {
	var nets []*net.IPNet
	for _, p := range proxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, "/") {
			ip := net.ParseIP(p)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", p)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			p = fmt.Sprintf("%s/%d", ip.String(), bits)
		}
		_, ipNet, err := net.ParseCIDR(p)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}

// RemoteIP is the socket peer address.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ClientIP honours forwarding headers only when the peer is a trusted
// proxy. X-Forwarded-For is walked right to left and the first hop that
// is not itself a trusted proxy wins.
func ClientIP(r *http.Request, trusted []*net.IPNet) string {
	remote := RemoteIP(r)
	if !isTrusted(remote, trusted) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if net.ParseIP(hop) == nil {
				break
			}
			if !isTrusted(hop, trusted) {
				return hop
			}
		}
	}

	for _, header := range []string{"X-Real-IP", "CF-Connecting-IP"} {
		if ip := strings.TrimSpace(r.Header.Get(header)); net.ParseIP(ip) != nil {
			return ip
		}
	}

	return remote
}

func isTrusted(ip string, trusted []*net.IPNet) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range trusted {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}

		next.ServeHTTP(w, r)
	})
}
