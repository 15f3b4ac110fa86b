// Package middleware holds the HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const domainKey contextKey = "client_domain"

// RequireClient authenticates requests with a bearer token and resolves
// the calling client's domain. clients maps token -> domain.
func RequireClient(clients map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			domain, ok := clients[token]
			if !ok {
				http.Error(w, "unknown client token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), domainKey, domain)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientDomain returns the authenticated client's domain, or "" when the
// request did not pass RequireClient.
func ClientDomain(ctx context.Context) string {
	domain, _ := ctx.Value(domainKey).(string)
	return domain
}
