package service

import (
	"math"
	"testing"
	"time"

	"typier/internal/engine"
	"typier/internal/models"
	"typier/internal/repository"
)

// seedResult creates a session row and a stored result for it
func seedResult(t *testing.T, sessionRepo *repository.SessionRepository, resultRepo *repository.ResultRepository,
	userID int64, id string, netWPM int, accuracy float64, completedAt time.Time) {
	t.Helper()

	session := engine.NewSession(id, &userID, "target text", "english", "medium", "words", "qwerty", 60, completedAt.Add(-time.Minute))
	if err := sessionRepo.Save(&session); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}

	result := &models.FinalResult{
		SessionID:       id,
		UserID:          &userID,
		NetWPM:          netWPM,
		GrossWPM:        float64(netWPM),
		PeakWPM:         netWPM,
		Accuracy:        accuracy,
		Consistency:     80,
		DurationSeconds: 60,
		Language:        "english",
		Difficulty:      "medium",
		CompletedAt:     completedAt,
	}
	if _, err := resultRepo.Save(result); err != nil {
		t.Fatalf("failed to seed result: %v", err)
	}
}

func TestSummaryAggregatesResults(t *testing.T) {
	db := newTestDB(t)
	sessionRepo := repository.NewSessionRepository(db)
	resultRepo := repository.NewResultRepository(db)
	svc := NewStatsService(resultRepo, sessionRepo, 25)
	user := createTestUser(t, db, "stats@example.com")

	base := time.Now().Add(-3 * time.Hour)
	seedResult(t, sessionRepo, resultRepo, user.ID, "s1", 40, 90, base)
	seedResult(t, sessionRepo, resultRepo, user.ID, "s2", 50, 95, base.Add(time.Hour))
	seedResult(t, sessionRepo, resultRepo, user.ID, "s3", 60, 100, base.Add(2*time.Hour))

	summary, err := svc.Summary(user.ID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if summary.Sessions != 3 {
		t.Errorf("sessions = %d, want 3", summary.Sessions)
	}
	if summary.AvgNetWPM != 50 {
		t.Errorf("avg net WPM = %v, want 50", summary.AvgNetWPM)
	}
	if summary.BestNetWPM != 60 {
		t.Errorf("best net WPM = %d, want 60", summary.BestNetWPM)
	}
	if summary.AvgAccuracy != 95 {
		t.Errorf("avg accuracy = %v, want 95", summary.AvgAccuracy)
	}
	// 40, 50, 60 in order: slope is exactly 10 WPM per session.
	if math.Abs(summary.TrendSlope-10) > 1e-9 {
		t.Errorf("trend slope = %v, want 10", summary.TrendSlope)
	}
	if summary.TrendSlope <= 0 {
		t.Error("improving run reported as non-improving")
	}
	// Three sessions fit inside the rolling window, so the recent average
	// is just the mean.
	if summary.RecentAvgNetWPM != 50 {
		t.Errorf("recent avg net WPM = %v, want 50", summary.RecentAvgNetWPM)
	}
}

func TestSummaryNoResults(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(repository.NewResultRepository(db), repository.NewSessionRepository(db), 25)
	user := createTestUser(t, db, "empty@example.com")

	summary, err := svc.Summary(user.ID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.Sessions != 0 {
		t.Errorf("sessions = %d, want 0", summary.Sessions)
	}
}

func TestLeaderboardRanksPersonalBests(t *testing.T) {
	db := newTestDB(t)
	sessionRepo := repository.NewSessionRepository(db)
	resultRepo := repository.NewResultRepository(db)
	svc := NewStatsService(resultRepo, sessionRepo, 25)

	fast := createTestUser(t, db, "fast@example.com")
	slow := createTestUser(t, db, "slow@example.com")

	now := time.Now()
	seedResult(t, sessionRepo, resultRepo, fast.ID, "f1", 80, 98, now.Add(-time.Hour))
	seedResult(t, sessionRepo, resultRepo, fast.ID, "f2", 70, 97, now.Add(-2*time.Hour))
	seedResult(t, sessionRepo, resultRepo, slow.ID, "sl1", 45, 92, now.Add(-time.Hour))

	board, err := svc.Leaderboard("english", 30)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}

	if len(board) != 2 {
		t.Fatalf("entries = %d, want 2 (one per user)", len(board))
	}
	if board[0].UserID != fast.ID || board[0].NetWPM != 80 {
		t.Errorf("first entry = user %d at %d WPM, want user %d at 80", board[0].UserID, board[0].NetWPM, fast.ID)
	}
	if board[0].Rank != 1 || board[1].Rank != 2 {
		t.Errorf("ranks = %d, %d, want 1, 2", board[0].Rank, board[1].Rank)
	}
}

func TestLeaderboardUnsupportedLanguage(t *testing.T) {
	db := newTestDB(t)
	svc := NewStatsService(repository.NewResultRepository(db), repository.NewSessionRepository(db), 25)

	if _, err := svc.Leaderboard("klingon", 30); err == nil {
		t.Error("Leaderboard() accepted an unsupported language")
	}
}

func TestWeakCharsAggregation(t *testing.T) {
	db := newTestDB(t)
	sessionRepo := repository.NewSessionRepository(db)
	svc := NewStatsService(repository.NewResultRepository(db), sessionRepo, 25)
	user := createTestUser(t, db, "weak@example.com")

	session := engine.NewSession("w1", &user.ID, "theme", "english", "medium", "words", "qwerty", 60, time.Now())
	if err := sessionRepo.Save(&session); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}

	now := time.Now()
	mistakes := []models.Mistake{
		{Position: 0, Expected: "t", Actual: "r", Timestamp: now},
		{Position: 1, Expected: "t", Actual: "y", Timestamp: now},
		{Position: 2, Expected: "e", Actual: "w", Timestamp: now},
	}
	if err := sessionRepo.AppendMistakes("w1", mistakes); err != nil {
		t.Fatalf("failed to seed mistakes: %v", err)
	}

	weak, err := svc.WeakChars(user.ID, 10)
	if err != nil {
		t.Fatalf("WeakChars() error = %v", err)
	}

	if len(weak) != 2 {
		t.Fatalf("weak chars = %d, want 2", len(weak))
	}
	if weak[0].Char != "t" || weak[0].Mistakes != 2 {
		t.Errorf("top weak char = %s (%d), want t (2)", weak[0].Char, weak[0].Mistakes)
	}
}

func TestDailyActivityRollsUpByDay(t *testing.T) {
	db := newTestDB(t)
	sessionRepo := repository.NewSessionRepository(db)
	resultRepo := repository.NewResultRepository(db)
	svc := NewStatsService(resultRepo, sessionRepo, 25)
	user := createTestUser(t, db, "daily@example.com")

	dayOne := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	seedResult(t, sessionRepo, resultRepo, user.ID, "d1", 40, 90, dayOne)
	seedResult(t, sessionRepo, resultRepo, user.ID, "d2", 60, 95, dayOne.Add(2*time.Hour))
	seedResult(t, sessionRepo, resultRepo, user.ID, "d3", 55, 95, dayOne.Add(48*time.Hour))

	activity, err := svc.DailyActivity(user.ID, 30)
	if err != nil {
		t.Fatalf("DailyActivity() error = %v", err)
	}

	if len(activity) != 2 {
		t.Fatalf("days = %d, want 2", len(activity))
	}
	if activity[0].Sessions != 2 {
		t.Errorf("first day sessions = %d, want 2", activity[0].Sessions)
	}
	if activity[0].AvgNetWPM != 50 {
		t.Errorf("first day avg = %v, want 50", activity[0].AvgNetWPM)
	}
}
