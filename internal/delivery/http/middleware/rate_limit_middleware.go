package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"patient-registration/pkg/response"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	Rate  rate.Limit
	Burst int
	// IdleTTL is how long an unused client limiter is kept.
	IdleTTL time.Duration
	// TrustedProxies are the peers allowed to name the client in
	// X-Forwarded-For. Requests from any other peer are keyed by peer address.
	TrustedProxies []netip.Prefix
}

// RateLimiter applies an independent token bucket to every client address.
type RateLimiter struct {
	config   RateLimiterConfig
	limiters *cache.Cache
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		config:   config,
		limiters: cache.New(config.IdleTTL, 2*config.IdleTTL),
	}
}

// PerMinute converts a requests-per-minute budget into a rate.Limit.
func PerMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Every(time.Minute / time.Duration(n))
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if l, ok := rl.limiters.Get(key); ok {
		rl.limiters.SetDefault(key, l)
		return l.(*rate.Limiter)
	}

	l := rate.NewLimiter(rl.config.Rate, rl.config.Burst)
	if err := rl.limiters.Add(key, l, cache.DefaultExpiration); err != nil {
		// Another request created it first.
		if existing, ok := rl.limiters.Get(key); ok {
			return existing.(*rate.Limiter)
		}
	}
	return l
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter(rl.clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "60")
			response.TooManyRequests(w, "Too many login attempts, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) trusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range rl.config.TrustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// clientIP returns the address the limiter keys on. X-Forwarded-For is only
// read when the peer is a trusted proxy, and is walked right to left so the
// first untrusted hop wins.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	remote := remoteIP(r)

	peer, err := netip.ParseAddr(remote)
	if err != nil || !rl.trusted(peer) {
		return remote
	}

	forwarded := strings.Join(r.Header.Values("X-Forwarded-For"), ",")
	if strings.TrimSpace(forwarded) == "" {
		return remote
	}

	hops := strings.Split(forwarded, ",")
	client := remote
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			return client
		}
		client = hop.Unmap().String()
		if !rl.trusted(hop) {
			return client
		}
	}
	return client
}

// remoteIP is the host part of the connection's peer address.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
