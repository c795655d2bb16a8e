package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"typier/internal/models"
	"typier/internal/security"
	"typier/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// sessionCookieName is the browser login cookie
const sessionCookieName = "session_id"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	limiter     *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		limiter:     limiter,
	}
}

// authenticate resolves the user behind a request from either the login
// cookie or a bearer token, or returns nil
func (m *Middleware) authenticate(w http.ResponseWriter, r *http.Request) *models.User {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		user, err := m.authService.ValidateAPIToken(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return nil
		}
		return user
	}

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	user, err := m.authService.ValidateSession(cookie.Value)
	if err != nil {
		// Clear the dead cookie so the browser stops sending it.
		http.SetCookie(w, security.DeleteCookie(r, sessionCookieName))
		return nil
	}
	return user
}

// RequireAuth rejects requests without a valid login session or API token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := m.authenticate(w, r)
		if user == nil {
			respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
			return
		}
		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin rejects requests from non-admin users
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil || !user.IsAdmin {
			respondWithError(w, http.StatusForbidden, "Admin access required", "", nil)
			return
		}
		next(w, r)
	})
}

// OptionalAuth attaches the user to the context when a valid credential is
// present but lets anonymous requests through
func (m *Middleware) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if user := m.authenticate(w, r); user != nil {
			r = r.WithContext(context.WithValue(r.Context(), UserContextKey, user))
		}
		next(w, r)
	}
}

// RateLimit throttles a handler per client IP, used on the auth endpoints
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(security.ClientIP(r)) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests, slow down", "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// userID returns the context user's ID, or nil for anonymous requests
func userID(ctx context.Context) *int64 {
	user := GetUserFromContext(ctx)
	if user == nil {
		return nil
	}
	return &user.ID
}
