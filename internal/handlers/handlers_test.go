package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"typier/internal/config"
	"typier/internal/database"
	"typier/internal/repository"
	"typier/internal/security"
	"typier/internal/service"
	"typier/internal/texts"
)

type testEnv struct {
	middleware     *Middleware
	authHandler    *AuthHandler
	sessionHandler *SessionHandler
	layoutHandler  *LayoutHandler
	authService    *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	resultRepo := repository.NewResultRepository(db)
	layoutRepo := repository.NewLayoutRepository(db)

	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	authService := service.NewAuthService(userRepo, tokens, 24*time.Hour)
	sessionService := service.NewSessionService(sessionRepo, resultRepo, layoutRepo, texts.NewProvider(), 60, 100)
	layoutService := service.NewLayoutService(layoutRepo)
	reportService, err := service.NewReportService("", "", "", "")
	if err != nil {
		t.Fatalf("failed to create report service: %v", err)
	}

	return &testEnv{
		middleware:     NewMiddleware(authService, security.NewRateLimiter(100, time.Minute)),
		authHandler:    NewAuthHandler(authService, reportService, &config.Config{AppBaseURL: "http://localhost:8080"}),
		sessionHandler: NewSessionHandler(sessionService),
		layoutHandler:  NewLayoutHandler(layoutService),
		authService:    authService,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestRespondWithErrorWritesJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithError(rec, http.StatusNotFound, "session not found", "", nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %s, want application/json", ct)
	}

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "session not found" {
		t.Errorf("error message = %q", body["error"])
	}
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	env := newTestEnv(t)

	handler := env.middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without credentials")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/stats/summary", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthAcceptsSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.authService.Register("auth@example.com", "handler-pass", "Auth"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	session, _, err := env.authService.Login("auth@example.com", "handler-pass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	reached := false
	handler := env.middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		user := GetUserFromContext(r.Context())
		if user == nil || user.Email != "auth@example.com" {
			t.Errorf("context user = %+v", user)
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/stats/summary", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: session.ID})
	rec := httptest.NewRecorder()
	handler(rec, req)

	if !reached {
		t.Error("handler never reached with a valid cookie")
	}
}

func TestRequireAuthAcceptsBearerToken(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.authService.Register("bearer@example.com", "token-pass-1", "Bearer")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	token, err := env.authService.IssueAPIToken(user.ID)
	if err != nil {
		t.Fatalf("IssueAPIToken() error = %v", err)
	}

	handler := env.middleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/stats/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	env := newTestEnv(t)
	env.middleware.limiter = security.NewRateLimiter(2, time.Minute)

	handler := env.middleware.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestSessionFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := postJSON(t, env.sessionHandler.Start, "/api/sessions", map[string]interface{}{
		"language":        "english",
		"durationSeconds": 60,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var started sessionView
	decodeBody(t, rec, &started)
	if started.Status != "idle" || started.TargetText == "" {
		t.Fatalf("started session = %+v", started)
	}

	// Typing the full target over the input endpoint completes the session.
	payload, _ := json.Marshal(map[string]string{"transcript": started.TargetText})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+started.ID+"/input", bytes.NewReader(payload))
	req.SetPathValue("id", started.ID)
	rec = httptest.NewRecorder()
	env.sessionHandler.Input(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("input status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var done sessionView
	decodeBody(t, rec, &done)
	if done.Status != "completed" {
		t.Errorf("status = %s, want completed", done.Status)
	}
	if done.Result == nil {
		t.Fatal("completed session has no result")
	}
	if done.Result.Accuracy != 100 {
		t.Errorf("accuracy = %v, want 100", done.Result.Accuracy)
	}
}

func TestSessionInputUnknownID(t *testing.T) {
	env := newTestEnv(t)

	payload, _ := json.Marshal(map[string]string{"transcript": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/nope/input", bytes.NewReader(payload))
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	env.sessionHandler.Input(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRegisterOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rec := postJSON(t, env.authHandler.Register, "/auth/register", map[string]string{
		"email":    "web@example.com",
		"password": "web-password",
		"name":     "Web User",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	cookieSet := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName && cookie.Value != "" {
			cookieSet = true
		}
	}
	if !cookieSet {
		t.Error("no login cookie set on register")
	}

	var user userView
	decodeBody(t, rec, &user)
	if user.Email != "web@example.com" {
		t.Errorf("email = %s", user.Email)
	}

	// Duplicate registration conflicts.
	rec = postJSON(t, env.authHandler.Register, "/auth/register", map[string]string{
		"email":    "web@example.com",
		"password": "web-password",
		"name":     "Web User",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", rec.Code)
	}

	// Bad credentials are unauthorized.
	rec = postJSON(t, env.authHandler.Login, "/auth/login", map[string]string{
		"email":    "web@example.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}
}

func TestLayoutListPublic(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/layouts?language=english", nil)
	rec := httptest.NewRecorder()
	env.layoutHandler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var layouts []layoutView
	decodeBody(t, rec, &layouts)
	if len(layouts) == 0 {
		t.Fatal("no layouts returned")
	}
}
