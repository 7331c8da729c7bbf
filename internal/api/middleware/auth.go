package middleware

import (
	"net/http"
	"strings"

	"github.com/kiranshivaraju/newsdash/internal/api/response"
	"golang.org/x/crypto/bcrypt"
)

// Auth gates the dashboard behind a single site password. The client sends
// the password as a Bearer token and it is checked against a bcrypt hash.
type Auth struct {
	hash []byte
}

// NewAuth creates a new Auth middleware from a bcrypt hash.
func NewAuth(passwordHash string) *Auth {
	return &Auth{hash: []byte(passwordHash)}
}

// Authenticate rejects requests whose Bearer token does not match the site
// password.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		password := extractBearerToken(r)
		if password == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		if bcrypt.CompareHashAndPassword(a.hash, []byte(password)) != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Could not validate credentials", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
