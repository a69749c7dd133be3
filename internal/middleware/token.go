package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// TokenHeader carries the per-process token the UI page was rendered with.
const TokenHeader = "X-Pdfmailer-Token"

// RequireToken rejects requests whose TokenHeader does not match token. Any
// local process can reach the loopback listener, so the API only answers
// callers that loaded the UI.
func RequireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(TokenHeader)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing or invalid token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
