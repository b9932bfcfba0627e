package middleware

import (
	"crypto/subtle"
	"net/http"
	"whatsapp-gateway-client/internal/infra/logger"
)

const tokenHeader = "X-API-Key"

// TokenMiddleware rejects requests whose X-API-Key does not match token.
// An empty token disables the check. The health check is always open.
func TokenMiddleware(log *logger.Logger, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthCheck" {
				next.ServeHTTP(w, r)
				return
			}

			if subtle.ConstantTimeCompare([]byte(r.Header.Get(tokenHeader)), []byte(token)) != 1 {
				log.Warn("Rejected request with invalid bridge token")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
