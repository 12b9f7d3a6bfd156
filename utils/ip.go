package utils

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP prefers the first hop of X-Forwarded-For, falling back to
// the socket peer address.
func RealClientIP(r *http.Request) string {
	if xfwd := r.Header.Get("X-Forwarded-For"); xfwd != "" {
		if first, _, found := strings.Cut(xfwd, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xfwd)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
