package repository

import (
	"database/sql"
	"strings"
	"time"

	"typier/internal/database"
	"typier/internal/models"
)

// SessionRepository handles typing session persistence. The engine itself
// never touches storage; services load a snapshot, run the engine, then
// write the updated snapshot back here.
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save inserts a newly created session
func (r *SessionRepository) Save(s *models.Session) error {
	query := `
		INSERT INTO typing_sessions
			(id, user_id, target_text, transcript, language, difficulty, text_type,
			 layout_id, duration_seconds, start_time, paused_at, time_left, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		s.ID, s.UserID, s.TargetText, s.Transcript, s.Language, s.Difficulty,
		s.TextType, s.LayoutID, s.DurationSeconds, s.StartTime, s.PausedAt, s.TimeLeft,
		string(s.Status), s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// FindByID retrieves a session with its mistake log, or nil when unknown
func (r *SessionRepository) FindByID(id string) (*models.Session, error) {
	query := `
		SELECT id, user_id, target_text, transcript, language, difficulty, text_type,
		       layout_id, duration_seconds, start_time, paused_at, time_left, status, created_at, updated_at
		FROM typing_sessions
		WHERE id = ?
	`

	s := &models.Session{}
	var userID sql.NullInt64
	var startTime, pausedAt sql.NullTime
	var status string

	err := r.db.QueryRow(query, id).Scan(
		&s.ID, &userID, &s.TargetText, &s.Transcript, &s.Language, &s.Difficulty,
		&s.TextType, &s.LayoutID, &s.DurationSeconds, &startTime, &pausedAt, &s.TimeLeft,
		&status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		s.UserID = &userID.Int64
	}
	if startTime.Valid {
		s.StartTime = &startTime.Time
	}
	if pausedAt.Valid {
		s.PausedAt = &pausedAt.Time
	}
	s.Status = models.SessionStatus(status)

	mistakes, err := r.getMistakes(id)
	if err != nil {
		return nil, err
	}
	s.Mistakes = mistakes

	return s, nil
}

// Update writes the mutable session fields back
func (r *SessionRepository) Update(s *models.Session) error {
	query := `
		UPDATE typing_sessions
		SET transcript = ?, start_time = ?, paused_at = ?, time_left = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, s.Transcript, s.StartTime, s.PausedAt, s.TimeLeft, string(s.Status), s.UpdatedAt, s.ID)
	return err
}

// AppendMistakes persists newly detected mistakes. The log is append-only;
// existing rows are never rewritten.
func (r *SessionRepository) AppendMistakes(sessionID string, mistakes []models.Mistake) error {
	if len(mistakes) == 0 {
		return nil
	}

	query := "INSERT INTO mistakes (session_id, pos, expected, actual, made_at) VALUES "
	placeholders := make([]string, 0, len(mistakes))
	args := make([]interface{}, 0, len(mistakes)*5)
	for _, m := range mistakes {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?)")
		args = append(args, sessionID, m.Position, m.Expected, m.Actual, m.Timestamp)
	}

	_, err := r.db.Exec(query+strings.Join(placeholders, ", "), args...)
	return err
}

func (r *SessionRepository) getMistakes(sessionID string) ([]models.Mistake, error) {
	query := `
		SELECT pos, expected, actual, made_at
		FROM mistakes
		WHERE session_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mistakes []models.Mistake
	for rows.Next() {
		var m models.Mistake
		if err := rows.Scan(&m.Position, &m.Expected, &m.Actual, &m.Timestamp); err != nil {
			return nil, err
		}
		mistakes = append(mistakes, m)
	}

	return mistakes, rows.Err()
}

// FindRunning returns active sessions whose countdown is ticking, with
// their mistake logs loaded so the sweeper can score them authoritatively.
// Paused sessions are excluded; their countdown is frozen and cannot
// expire.
func (r *SessionRepository) FindRunning() ([]models.Session, error) {
	query := `
		SELECT id, user_id, target_text, transcript, language, difficulty, text_type,
		       layout_id, duration_seconds, start_time, paused_at, time_left, status, created_at, updated_at
		FROM typing_sessions
		WHERE status = 'active' AND start_time IS NOT NULL
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		var userID sql.NullInt64
		var startTime, pausedAt sql.NullTime
		var status string

		err := rows.Scan(
			&s.ID, &userID, &s.TargetText, &s.Transcript, &s.Language, &s.Difficulty,
			&s.TextType, &s.LayoutID, &s.DurationSeconds, &startTime, &pausedAt, &s.TimeLeft,
			&status, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if userID.Valid {
			s.UserID = &userID.Int64
		}
		if startTime.Valid {
			s.StartTime = &startTime.Time
		}
		if pausedAt.Valid {
			s.PausedAt = &pausedAt.Time
		}
		s.Status = models.SessionStatus(status)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		mistakes, err := r.getMistakes(sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Mistakes = mistakes
	}

	return sessions, nil
}

// AbandonStale marks sessions nobody is typing into as abandoned: idle
// sessions that never received input, and paused sessions left frozen past
// the cutoff
func (r *SessionRepository) AbandonStale(cutoff time.Time) (int64, error) {
	query := `
		UPDATE typing_sessions
		SET status = 'abandoned', updated_at = ?
		WHERE status IN ('idle', 'paused') AND updated_at < ?
	`
	result, err := r.db.Exec(query, time.Now(), cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// WeakChars aggregates a user's most-mistyped expected characters over
// their recent sessions
func (r *SessionRepository) WeakChars(userID int64, limit int) ([]models.WeakChar, error) {
	query := `
		SELECT m.expected, COUNT(*) AS mistakes
		FROM mistakes m
		JOIN typing_sessions s ON s.id = m.session_id
		WHERE s.user_id = ?
		GROUP BY m.expected
		ORDER BY mistakes DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chars []models.WeakChar
	for rows.Next() {
		var wc models.WeakChar
		if err := rows.Scan(&wc.Char, &wc.Mistakes); err != nil {
			return nil, err
		}
		chars = append(chars, wc)
	}

	return chars, rows.Err()
}
