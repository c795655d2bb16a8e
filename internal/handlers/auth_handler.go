package handlers

import (
	"log"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"typier/internal/config"
	"typier/internal/security"
	"typier/internal/service"
)

// AuthHandler handles registration, login, logout and the OAuth flows
type AuthHandler struct {
	authService   *service.AuthService
	reportService *service.ReportService

	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, reportService *service.ReportService, cfg *config.Config) *AuthHandler {
	providers := map[string]OAuthProvider{
		"google": {
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"github": {
			Label: "GitHub",
			Config: &oauth2.Config{
				ClientID:     cfg.GitHubClientID,
				ClientSecret: cfg.GitHubClientSecret,
				Endpoint:     github.Endpoint,
				Scopes:       []string{"read:user", "user:email"},
			},
			UserInfoURL: "https://api.github.com/user",
		},
	}

	return &AuthHandler{
		authService:          authService,
		reportService:        reportService,
		oauthProviders:       providers,
		oauthRedirectBaseURL: cfg.AppBaseURL,
	}
}

// Register creates an account and logs the user in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(w, err, "Failed to register")
		return
	}

	session, _, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err, "Failed to login after registration")
		return
	}

	if err := h.reportService.SendWelcomeEmail(r.Context(), user.Email, user.Name); err != nil {
		// Registration already succeeded; a failed welcome email is not
		// worth surfacing to the user.
		log.Printf("Welcome email failed for %s: %v", user.Email, err)
	}

	http.SetCookie(w, security.SessionCookie(r, sessionCookieName, session.ID, session.ExpiresAt))
	respondJSON(w, http.StatusCreated, newUserView(user))
}

// Login authenticates a user and sets the login cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err, "Failed to login")
		return
	}

	http.SetCookie(w, security.SessionCookie(r, sessionCookieName, session.ID, session.ExpiresAt))
	respondJSON(w, http.StatusOK, newUserView(user))
}

// Logout invalidates the login session and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			log.Printf("Logout failed: %v", err)
		}
	}
	http.SetCookie(w, security.DeleteCookie(r, sessionCookieName))
	respondJSON(w, http.StatusNoContent, nil)
}

// Me returns the logged-in user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	respondJSON(w, http.StatusOK, newUserView(user))
}

// Token issues a bearer token for API clients that cannot hold cookies
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	token, err := h.authService.IssueAPIToken(user.ID)
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "API tokens are not configured", "Token issue failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}
