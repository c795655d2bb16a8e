package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"typier/internal/config"
	"typier/internal/database"
	"typier/internal/handlers"
	"typier/internal/repository"
	"typier/internal/security"
	"typier/internal/service"
	"typier/internal/texts"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	resultRepo := repository.NewResultRepository(db)
	layoutRepo := repository.NewLayoutRepository(db)

	// Initialize services
	tokens := security.NewTokenIssuer(cfg.JWTSecret, 24*time.Hour)
	if !tokens.Enabled() {
		log.Println("Warning: JWT_SECRET not set, API tokens disabled")
	}

	authService := service.NewAuthService(userRepo, tokens, cfg.SessionDuration)
	sessionService := service.NewSessionService(sessionRepo, resultRepo, layoutRepo, texts.NewProvider(), cfg.DefaultSessionSeconds, cfg.DefaultTextLength)
	layoutService := service.NewLayoutService(layoutRepo)
	statsService := service.NewStatsService(resultRepo, sessionRepo, cfg.LeaderboardSize)
	recommendationService := service.NewRecommendationService(statsService)
	backupService := service.NewBackupService(db)

	reportService, err := service.NewReportService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	if !reportService.IsEnabled() {
		log.Println("Warning: SES_FROM_EMAIL not set, email reports disabled")
	}

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, security.NewRateLimiter(20, time.Minute))
	authHandler := handlers.NewAuthHandler(authService, reportService, cfg)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	layoutHandler := handlers.NewLayoutHandler(layoutService)
	statsHandler := handlers.NewStatsHandler(statsService, recommendationService, reportService)
	adminHandler := handlers.NewAdminHandler(authService, backupService)

	// Setup routes
	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("POST /auth/token", middleware.RequireAuth(authHandler.Token))
	mux.HandleFunc("GET /auth/providers", authHandler.Providers)
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)

	// Typing session routes; anonymous sessions are allowed, a logged-in
	// user gets their results attributed
	mux.HandleFunc("POST /api/sessions", middleware.OptionalAuth(sessionHandler.Start))
	mux.HandleFunc("GET /api/sessions/{id}", sessionHandler.Get)
	mux.HandleFunc("POST /api/sessions/{id}/input", sessionHandler.Input)
	mux.HandleFunc("POST /api/sessions/{id}/pause", sessionHandler.Pause)
	mux.HandleFunc("POST /api/sessions/{id}/resume", sessionHandler.Resume)
	mux.HandleFunc("POST /api/sessions/{id}/abandon", sessionHandler.Abandon)
	mux.HandleFunc("POST /api/sessions/{id}/complete", sessionHandler.Complete)

	// Layout routes
	mux.HandleFunc("GET /api/layouts", layoutHandler.List)
	mux.HandleFunc("GET /api/layouts/{id}", layoutHandler.Get)
	mux.HandleFunc("POST /api/layouts", middleware.RequireAuth(layoutHandler.Create))
	mux.HandleFunc("PUT /api/layouts/{id}", middleware.RequireAuth(layoutHandler.Update))
	mux.HandleFunc("DELETE /api/layouts/{id}", middleware.RequireAuth(layoutHandler.Delete))
	mux.HandleFunc("GET /api/preferences/layout", middleware.RequireAuth(layoutHandler.GetPreference))
	mux.HandleFunc("PUT /api/preferences/layout", middleware.RequireAuth(layoutHandler.SetPreference))

	// Stats routes
	mux.HandleFunc("GET /api/stats/summary", middleware.RequireAuth(statsHandler.Summary))
	mux.HandleFunc("GET /api/stats/results", middleware.RequireAuth(statsHandler.Results))
	mux.HandleFunc("GET /api/stats/daily", middleware.RequireAuth(statsHandler.Daily))
	mux.HandleFunc("GET /api/stats/weak-chars", middleware.RequireAuth(statsHandler.WeakChars))
	mux.HandleFunc("GET /api/stats/recommendations", middleware.RequireAuth(statsHandler.Recommendations))
	mux.HandleFunc("POST /api/stats/report", middleware.RequireAuth(statsHandler.SendReport))
	mux.HandleFunc("GET /api/leaderboard", statsHandler.Leaderboard)

	// Admin routes
	mux.HandleFunc("GET /admin/users", middleware.RequireAdmin(adminHandler.ListUsers))
	mux.HandleFunc("GET /admin/backup/export", middleware.RequireAdmin(adminHandler.ExportBackup))
	mux.HandleFunc("POST /admin/backup/import", middleware.RequireAdmin(adminHandler.ImportBackup))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background maintenance
	go sweepSessions(sessionService, cfg.SessionSweepInterval)
	go cleanupExpiredLogins(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// sweepSessions periodically force-completes typing sessions that ran past
// their deadline and abandons stale idle ones
func sweepSessions(sessionService *service.SessionService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		sessionService.SweepExpired()
	}
}

// cleanupExpiredLogins periodically removes expired login sessions
func cleanupExpiredLogins(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired login sessions: %v", err)
		} else {
			log.Println("Expired login sessions cleaned up")
		}
	}
}
