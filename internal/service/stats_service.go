package service

import (
	"fmt"
	"time"

	"typier/internal/models"
	"typier/internal/repository"
	"typier/internal/stats"
	"typier/internal/validation"
)

// summaryWindow is how many recent results feed the per-user summary
const summaryWindow = 50

// recentAvgWindow is the rolling-mean window for the recent net WPM figure
const recentAvgWindow = 10

// StatsService aggregates stored results into per-user summaries, daily
// activity, weak character reports, and the per-language leaderboard.
type StatsService struct {
	resultRepo  *repository.ResultRepository
	sessionRepo *repository.SessionRepository

	leaderboardSize int
}

// NewStatsService creates a new stats service
func NewStatsService(resultRepo *repository.ResultRepository, sessionRepo *repository.SessionRepository, leaderboardSize int) *StatsService {
	return &StatsService{
		resultRepo:      resultRepo,
		sessionRepo:     sessionRepo,
		leaderboardSize: leaderboardSize,
	}
}

// Summary computes a user's aggregate statistics over their recent results
func (s *StatsService) Summary(userID int64) (*models.StatsSummary, error) {
	results, err := s.resultRepo.ListByUser(userID, summaryWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}

	summary := &models.StatsSummary{Sessions: len(results)}
	if len(results) == 0 {
		return summary, nil
	}

	wpms := make([]float64, len(results))
	accuracies := make([]float64, len(results))
	consistencies := make([]float64, len(results))
	// ListByUser returns newest first; the trend wants chronological order.
	for i, r := range results {
		idx := len(results) - 1 - i
		wpms[idx] = float64(r.NetWPM)
		accuracies[i] = r.Accuracy
		consistencies[i] = r.Consistency
		if r.NetWPM > summary.BestNetWPM {
			summary.BestNetWPM = r.NetWPM
		}
	}

	summary.AvgNetWPM = stats.Mean(wpms)
	summary.AvgAccuracy = stats.Mean(accuracies)
	summary.AvgConsistency = stats.Mean(consistencies)
	summary.TrendSlope = stats.Slope(wpms)
	summary.WPMVariation = stats.CoefficientOfVariation(wpms)

	rolling := stats.MovingAverage(wpms, recentAvgWindow)
	summary.RecentAvgNetWPM = rolling[len(rolling)-1]

	return summary, nil
}

// RecentResults returns a user's latest results, newest first
func (s *StatsService) RecentResults(userID int64, limit int) ([]models.FinalResult, error) {
	if limit <= 0 || limit > 200 {
		limit = summaryWindow
	}
	return s.resultRepo.ListByUser(userID, limit)
}

// DailyActivity rolls up a user's completed sessions per day over the last
// given number of days
func (s *StatsService) DailyActivity(userID int64, days int) ([]models.DailyActivity, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.resultRepo.DailyActivity(userID, since)
}

// WeakChars returns the characters a user mistypes most
func (s *StatsService) WeakChars(userID int64, limit int) ([]models.WeakChar, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.sessionRepo.WeakChars(userID, limit)
}

// Leaderboard returns the ranked personal bests for a language over the
// last given number of days
func (s *StatsService) Leaderboard(language string, days int) ([]models.LeaderboardEntry, error) {
	if err := validation.ValidateLanguage(language, SupportedLanguages()); err != nil {
		return nil, err
	}
	if days <= 0 || days > 365 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.resultRepo.Leaderboard(language, since, s.leaderboardSize)
}
