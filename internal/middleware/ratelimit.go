package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"NetIntelAPI/internal/cache"
)

const rateLimitPrefix = "ratelimit:"

// RateLimit allows requestsPerMinute hits per client address. Counters live
// in Redis so every replica shares them; a cache outage lets traffic through.
// X-Forwarded-For is only read when the peer is one of trustedProxies.
func RateLimit(c *cache.Cache, requestsPerMinute int, trustedProxies []string) func(http.Handler) http.Handler {
	proxies := parseProxies(trustedProxies)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if !c.CheckRateLimit(r.Context(), rateLimitPrefix+clientIP(r, proxies), requestsPerMinute, time.Minute) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error": "Rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// parseProxies accepts bare IPs and CIDRs; anything else is skipped
// (config validation reports it).
func parseProxies(entries []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, e := range entries {
		if ip := net.ParseIP(e); ip != nil {
			bits := 8 * len(ip.To16())
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		if _, n, err := net.ParseCIDR(e); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}

func trusted(proxies []*net.IPNet, addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range proxies {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// clientIP keys on the TCP peer. Behind a trusted proxy it walks
// X-Forwarded-For from the right and returns the first untrusted hop.
func clientIP(r *http.Request, proxies []*net.IPNet) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" || !trusted(proxies, host) {
		return host
	}

	hops := strings.Split(forwarded, ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		host = hop
		if !trusted(proxies, hop) {
			break
		}
	}
	return host
}
