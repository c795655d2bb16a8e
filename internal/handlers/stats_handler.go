package handlers

import (
	"net/http"
	"strconv"

	"typier/internal/models"
	"typier/internal/service"
)

// StatsHandler exposes per-user statistics, the leaderboard and practice
// recommendations over JSON
type StatsHandler struct {
	statsService          *service.StatsService
	recommendationService *service.RecommendationService
	reportService         *service.ReportService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *service.StatsService, recommendationService *service.RecommendationService, reportService *service.ReportService) *StatsHandler {
	return &StatsHandler{
		statsService:          statsService,
		recommendationService: recommendationService,
		reportService:         reportService,
	}
}

// Summary returns the caller's aggregate statistics
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	summary, err := h.statsService.Summary(user.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to compute summary")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions":        summary.Sessions,
		"avgNetWPM":       summary.AvgNetWPM,
		"bestNetWPM":      summary.BestNetWPM,
		"avgAccuracy":     summary.AvgAccuracy,
		"avgConsistency":  summary.AvgConsistency,
		"trendSlope":      summary.TrendSlope,
		"wpmVariation":    summary.WPMVariation,
		"recentAvgNetWPM": summary.RecentAvgNetWPM,
	})
}

// Results returns the caller's recent results, newest first
func (h *StatsHandler) Results(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	results, err := h.statsService.RecentResults(user.ID, queryInt(r, "limit"))
	if err != nil {
		respondServiceError(w, err, "Failed to load results")
		return
	}

	views := make([]resultView, len(results))
	for i := range results {
		views[i] = newResultView(&results[i])
	}
	respondJSON(w, http.StatusOK, views)
}

// Daily returns the caller's per-day session rollup
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	activity, err := h.statsService.DailyActivity(user.ID, queryInt(r, "days"))
	if err != nil {
		respondServiceError(w, err, "Failed to load daily activity")
		return
	}

	type dayView struct {
		Date      string  `json:"date"`
		Sessions  int     `json:"sessions"`
		AvgNetWPM float64 `json:"avgNetWPM"`
	}
	views := make([]dayView, len(activity))
	for i, day := range activity {
		views[i] = dayView{
			Date:      day.Date.Format("2006-01-02"),
			Sessions:  day.Sessions,
			AvgNetWPM: day.AvgNetWPM,
		}
	}
	respondJSON(w, http.StatusOK, views)
}

// WeakChars returns the characters the caller mistypes most
func (h *StatsHandler) WeakChars(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	weak, err := h.statsService.WeakChars(user.ID, queryInt(r, "limit"))
	if err != nil {
		respondServiceError(w, err, "Failed to load weak characters")
		return
	}

	type weakView struct {
		Char     string `json:"char"`
		Mistakes int    `json:"mistakes"`
	}
	views := make([]weakView, len(weak))
	for i, wc := range weak {
		views[i] = weakView{Char: wc.Char, Mistakes: wc.Mistakes}
	}
	respondJSON(w, http.StatusOK, views)
}

// Leaderboard returns the ranked personal bests for a language. Public;
// anonymous sessions never appear on it.
func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")
	if language == "" {
		language = "english"
	}

	entries, err := h.statsService.Leaderboard(language, queryInt(r, "days"))
	if err != nil {
		respondServiceError(w, err, "Failed to load leaderboard")
		return
	}

	views := make([]leaderboardEntryView, len(entries))
	for i, e := range entries {
		views[i] = leaderboardEntryView{
			Rank:        e.Rank,
			UserName:    e.UserName,
			NetWPM:      e.NetWPM,
			Accuracy:    e.Accuracy,
			Language:    e.Language,
			CompletedAt: e.CompletedAt,
		}
	}
	respondJSON(w, http.StatusOK, views)
}

// Recommendations returns practice advice derived from the caller's results
func (h *StatsHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	recs, err := h.recommendationService.Recommend(user.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to compute recommendations")
		return
	}

	type recView struct {
		Category string `json:"category"`
		Message  string `json:"message"`
		Priority int    `json:"priority"`
	}
	views := make([]recView, len(recs))
	for i, rec := range recs {
		views[i] = recView{Category: rec.Category, Message: rec.Message, Priority: rec.Priority}
	}
	respondJSON(w, http.StatusOK, views)
}

// SendReport emails the caller their progress report
func (h *StatsHandler) SendReport(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if !h.reportService.IsEnabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Report emails are not configured", "", nil)
		return
	}

	summary, err := h.statsService.Summary(user.ID)
	if err != nil {
		respondServiceError(w, err, "Failed to compute summary")
		return
	}
	if summary.Sessions == 0 {
		respondWithError(w, http.StatusUnprocessableEntity, "Complete a session before requesting a report", "", nil)
		return
	}

	var recs []models.Recommendation
	if recs, err = h.recommendationService.Recommend(user.ID); err != nil {
		respondServiceError(w, err, "Failed to compute recommendations")
		return
	}

	if err := h.reportService.SendProgressReport(r.Context(), user.Email, user.Name, summary, recs); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to send report", "Report email failed", err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func queryInt(r *http.Request, key string) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
