package security

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// NewID creates a new UUID string, used for login sessions and typing
// session identifiers
func NewID() string {
	return uuid.New().String()
}

// IsSecureRequest determines if the request arrived over HTTPS, directly
// or behind a reverse proxy
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// SessionCookie creates a login cookie with the standard security flags
func SessionCookie(r *http.Request, name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// DeleteCookie creates a cookie that clears the named cookie
func DeleteCookie(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
	}
}
