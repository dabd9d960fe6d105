package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// public paths never require a token.
var public = map[string]bool{"/healthz": true, "/metrics": true}

// Middleware enforces a bearer token carrying the required scope.
type Middleware struct {
	verifier *Verifier
	scope    string
}

// NewMiddleware constructs the middleware. CORS preflights and the probe
// endpoints pass through unauthenticated.
func NewMiddleware(cfg Config, scope string) Middleware {
	return Middleware{verifier: NewVerifier(cfg), scope: scope}
}

// Wrap applies authentication around the provided handler.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || public[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		scheme, token, _ := strings.Cut(r.Header.Get("Authorization"), " ")
		if !strings.EqualFold(scheme, "bearer") {
			token = ""
		}
		claims, err := m.verifier.Verify(token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="sleeve-selector"`)
			code := "unauthorized"
			if errors.Is(err, ErrExpiredToken) {
				code = "token_expired"
			}
			deny(w, http.StatusUnauthorized, code, err.Error())
			return
		}
		if m.scope != "" && !claims.HasScope(m.scope) {
			deny(w, http.StatusForbidden, "forbidden", "scope "+m.scope+" required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func deny(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"type": code, "detail": detail})
}
