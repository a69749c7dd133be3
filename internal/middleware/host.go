package middleware

import (
	"net"
	"net/http"
	"strings"
)

// LoopbackHost rejects requests whose Host header is not localhost or a
// loopback IP on port. A page that rebinds its own DNS name to 127.0.0.1
// still sends that name as Host and is refused here, before it can read the
// token out of the index page.
func LoopbackHost(port string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowedHost(r.Host, port) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allowedHost(hostport, port string) bool {
	host, p, err := net.SplitHostPort(hostport)
	if err != nil {
		// No port in Host means the default one.
		host, p = strings.Trim(hostport, "[]"), "80"
	}
	if p != port {
		return false
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
