package service

import (
	"fmt"
	"sort"
	"strings"

	"typier/internal/models"
)

// Thresholds for the rule-based recommendations
const (
	minSessionsForAdvice  = 3
	lowAccuracyThreshold  = 92.0
	highVariationCutoff   = 0.25
	lowConsistencyCutoff  = 60.0
	weakCharAdviceMinimum = 5
)

// RecommendationService turns a user's aggregates into practice advice.
// Every suggestion is derived from stored results, never guessed.
type RecommendationService struct {
	statsService *StatsService
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(statsService *StatsService) *RecommendationService {
	return &RecommendationService{statsService: statsService}
}

// Recommend produces practice suggestions ordered by priority
func (s *RecommendationService) Recommend(userID int64) ([]models.Recommendation, error) {
	summary, err := s.statsService.Summary(userID)
	if err != nil {
		return nil, err
	}

	if summary.Sessions < minSessionsForAdvice {
		return []models.Recommendation{{
			Category: "drill",
			Message:  fmt.Sprintf("Complete %d more sessions to unlock personalized advice.", minSessionsForAdvice-summary.Sessions),
			Priority: 1,
		}}, nil
	}

	var recs []models.Recommendation

	if summary.AvgAccuracy < lowAccuracyThreshold {
		recs = append(recs, models.Recommendation{
			Category: "accuracy",
			Message:  fmt.Sprintf("Your accuracy averages %.1f%%. Slow down until you stay above %.0f%%; speed follows accuracy.", summary.AvgAccuracy, lowAccuracyThreshold),
			Priority: 1,
		})
	}

	if summary.WPMVariation > highVariationCutoff || summary.AvgConsistency < lowConsistencyCutoff {
		recs = append(recs, models.Recommendation{
			Category: "consistency",
			Message:  "Your speed swings a lot between sessions. Aim for a steady rhythm rather than bursts.",
			Priority: 2,
		})
	}

	weak, err := s.statsService.WeakChars(userID, 5)
	if err != nil {
		return nil, err
	}
	var drillChars []string
	for _, wc := range weak {
		if wc.Mistakes >= weakCharAdviceMinimum {
			drillChars = append(drillChars, wc.Char)
		}
	}
	if len(drillChars) > 0 {
		recs = append(recs, models.Recommendation{
			Category: "drill",
			Message:  fmt.Sprintf("You keep mistyping %s. Word sessions will feature these characters more often.", strings.Join(drillChars, ", ")),
			Priority: 3,
		})
	}

	if summary.TrendSlope <= 0 && summary.Sessions >= 10 {
		recs = append(recs, models.Recommendation{
			Category: "speed",
			Message:  "Your speed has plateaued. Try shorter, harder sessions to push past it.",
			Priority: 4,
		})
	}

	if len(recs) == 0 {
		recs = append(recs, models.Recommendation{
			Category: "speed",
			Message:  fmt.Sprintf("Solid fundamentals at %.0f WPM. Keep practicing daily to push your best of %d.", summary.AvgNetWPM, summary.BestNetWPM),
			Priority: 5,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority < recs[j].Priority })
	return recs, nil
}
