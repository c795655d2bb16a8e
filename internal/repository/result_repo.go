package repository

import (
	"database/sql"
	"time"

	"typier/internal/database"
	"typier/internal/models"
)

// ResultRepository is the statistics sink: it stores final results keyed by
// user and serves the aggregation queries behind stats and leaderboards.
type ResultRepository struct {
	db *database.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *database.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Save stores a final result and returns its ID
func (r *ResultRepository) Save(result *models.FinalResult) (int64, error) {
	query := `
		INSERT INTO results
			(session_id, user_id, net_wpm, gross_wpm, peak_wpm, accuracy, consistency,
			 correct_chars, correct_words, incorrect_words, mistake_count,
			 duration_seconds, language, difficulty, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	return r.db.ExecReturningID(query,
		result.SessionID, result.UserID, result.NetWPM, result.GrossWPM,
		result.PeakWPM, result.Accuracy, result.Consistency, result.CorrectChars,
		result.CorrectWords, result.IncorrectWords, result.MistakeCount,
		result.DurationSeconds, result.Language, result.Difficulty, result.CompletedAt,
	)
}

// FindBySessionID returns the stored result for a session, or nil
func (r *ResultRepository) FindBySessionID(sessionID string) (*models.FinalResult, error) {
	query := `
		SELECT id, session_id, user_id, net_wpm, gross_wpm, peak_wpm, accuracy,
		       consistency, correct_chars, correct_words, incorrect_words,
		       mistake_count, duration_seconds, language, difficulty, completed_at
		FROM results
		WHERE session_id = ?
	`

	result, err := scanResult(r.db.QueryRow(query, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return result, err
}

// ListByUser returns a user's results, most recent first
func (r *ResultRepository) ListByUser(userID int64, limit int) ([]models.FinalResult, error) {
	query := `
		SELECT id, session_id, user_id, net_wpm, gross_wpm, peak_wpm, accuracy,
		       consistency, correct_chars, correct_words, incorrect_words,
		       mistake_count, duration_seconds, language, difficulty, completed_at
		FROM results
		WHERE user_id = ?
		ORDER BY completed_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.FinalResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	return results, rows.Err()
}

// Leaderboard returns the best results per user for a language, ordered by
// net WPM. One row per user: their personal best.
func (r *ResultRepository) Leaderboard(language string, since time.Time, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT res.user_id, u.name, MAX(res.net_wpm) AS best_wpm,
		       MAX(res.accuracy) AS best_accuracy, MAX(res.completed_at) AS latest
		FROM results res
		JOIN users u ON u.id = res.user_id
		WHERE res.language = ? AND res.completed_at >= ? AND res.user_id IS NOT NULL
		GROUP BY res.user_id, u.name
		ORDER BY best_wpm DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, language, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	rank := 0
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.UserName, &e.NetWPM, &e.Accuracy, &e.CompletedAt); err != nil {
			return nil, err
		}
		rank++
		e.Rank = rank
		e.Language = language
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// DailyActivity rolls up a user's completed sessions per day
func (r *ResultRepository) DailyActivity(userID int64, since time.Time) ([]models.DailyActivity, error) {
	query := `
		SELECT completed_at, net_wpm
		FROM results
		WHERE user_id = ? AND completed_at >= ?
		ORDER BY completed_at ASC
	`

	rows, err := r.db.Query(query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Date truncation differs per dialect, so the rollup happens here.
	byDay := make(map[string]*models.DailyActivity)
	sums := make(map[string]float64)
	var order []string
	for rows.Next() {
		var completedAt time.Time
		var netWPM int
		if err := rows.Scan(&completedAt, &netWPM); err != nil {
			return nil, err
		}

		day := completedAt.UTC().Format("2006-01-02")
		entry, ok := byDay[day]
		if !ok {
			date, _ := time.Parse("2006-01-02", day)
			entry = &models.DailyActivity{Date: date}
			byDay[day] = entry
			order = append(order, day)
		}
		entry.Sessions++
		sums[day] += float64(netWPM)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	activity := make([]models.DailyActivity, 0, len(order))
	for _, day := range order {
		entry := byDay[day]
		entry.AvgNetWPM = sums[day] / float64(entry.Sessions)
		activity = append(activity, *entry)
	}
	return activity, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row rowScanner) (*models.FinalResult, error) {
	result := &models.FinalResult{}
	var userID sql.NullInt64

	err := row.Scan(
		&result.ID, &result.SessionID, &userID, &result.NetWPM, &result.GrossWPM,
		&result.PeakWPM, &result.Accuracy, &result.Consistency, &result.CorrectChars,
		&result.CorrectWords, &result.IncorrectWords, &result.MistakeCount,
		&result.DurationSeconds, &result.Language, &result.Difficulty, &result.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		result.UserID = &userID.Int64
	}
	return result, nil
}
