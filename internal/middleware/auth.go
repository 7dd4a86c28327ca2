// File: internal/middleware/auth.go
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// TokenValidator resolves a session token to a username.
type TokenValidator interface {
	ValidateJWTToken(token string) (string, error)
}

// NewJWTMiddleware accepts a Bearer token or the auth_token cookie and puts
// the username on the request context. Anything else gets a 401.
func NewJWTMiddleware(validator TokenValidator, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := tokenFromRequest(r)
			if token == "" {
				unauthorized(w, "authentication required")
				return
			}

			username, err := validator.ValidateJWTToken(token)
			if err != nil {
				logger.Warn("rejected invalid token", "path", r.URL.Path, "error", err)
				if fromCookie {
					ClearAuthCookie(w)
				}
				unauthorized(w, "invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), username)))
		})
	}
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token), false
		}
	}
	if cookie, err := r.Cookie(AuthCookieName); err == nil {
		return cookie.Value, true
	}
	return "", false
}

// SetAuthCookie stores token in an HttpOnly cookie.
func SetAuthCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookie expires the auth cookie.
func ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
