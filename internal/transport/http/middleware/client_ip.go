package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"geoattend/internal/requestctx"
)

// ClientAddr resolves the client IP once per request. X-Forwarded-For is
// only honoured when the direct peer is one of the trusted proxies; the
// client is then the right-most hop that is not itself a trusted proxy.
func ClientAddr(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestctx.WithClientIP(r.Context(), resolveClientIP(r, trusted))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP returns the address resolved by ClientAddr, or the peer address
// when the middleware is not installed.
func ClientIP(r *http.Request) string {
	if ip := requestctx.GetClientIP(r.Context()); ip != "" {
		return ip
	}
	return remoteHost(r)
}

func resolveClientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := remoteHost(r)
	if !isTrusted(peer, trusted) {
		return peer
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		addr, err := netip.ParseAddr(hop)
		if err != nil {
			break
		}
		if !isTrusted(addr.String(), trusted) {
			return addr.String()
		}
	}
	return peer
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
