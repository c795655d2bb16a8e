package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"typier/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version    string             `json:"version"`
	ExportedAt time.Time          `json:"exported_at"`
	Users      []UserBackup       `json:"users"`
	Layouts    []LayoutBackup     `json:"layouts"`
	Prefs      []PreferenceBackup `json:"layout_preferences"`
	Sessions   []SessionBackup    `json:"sessions"`
	Mistakes   []MistakeBackup    `json:"mistakes"`
	Results    []ResultBackup     `json:"results"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	IsAdmin       bool      `json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LayoutBackup represents a layout record for backup
type LayoutBackup struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Language  string    `json:"language"`
	KeyRows   string    `json:"key_rows"`
	IsCustom  bool      `json:"is_custom"`
	CreatedBy *int64    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PreferenceBackup represents a layout preference for backup
type PreferenceBackup struct {
	UserID   int64  `json:"user_id"`
	Language string `json:"language"`
	LayoutID string `json:"layout_id"`
}

// SessionBackup represents a typing session record for backup
type SessionBackup struct {
	ID              string     `json:"id"`
	UserID          *int64     `json:"user_id"`
	TargetText      string     `json:"target_text"`
	Transcript      string     `json:"transcript"`
	Language        string     `json:"language"`
	Difficulty      string     `json:"difficulty"`
	TextType        string     `json:"text_type"`
	LayoutID        string     `json:"layout_id"`
	DurationSeconds int        `json:"duration_seconds"`
	StartTime       *time.Time `json:"start_time"`
	PausedAt        *time.Time `json:"paused_at"`
	TimeLeft        float64    `json:"time_left"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// MistakeBackup represents a mistake log entry for backup
type MistakeBackup struct {
	SessionID string    `json:"session_id"`
	Position  int       `json:"pos"`
	Expected  string    `json:"expected"`
	Actual    string    `json:"actual"`
	MadeAt    time.Time `json:"made_at"`
}

// ResultBackup represents a final result record for backup
type ResultBackup struct {
	SessionID       string    `json:"session_id"`
	UserID          *int64    `json:"user_id"`
	NetWPM          int       `json:"net_wpm"`
	GrossWPM        float64   `json:"gross_wpm"`
	PeakWPM         int       `json:"peak_wpm"`
	Accuracy        float64   `json:"accuracy"`
	Consistency     float64   `json:"consistency"`
	CorrectChars    int       `json:"correct_chars"`
	CorrectWords    int       `json:"correct_words"`
	IncorrectWords  int       `json:"incorrect_words"`
	MistakeCount    int       `json:"mistake_count"`
	DurationSeconds float64   `json:"duration_seconds"`
	Language        string    `json:"language"`
	Difficulty      string    `json:"difficulty"`
	CompletedAt     time.Time `json:"completed_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes the full database as JSON to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}
	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter writes the full database as JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	log.Println("Starting database export...")

	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportLayouts(backup); err != nil {
		return fmt.Errorf("failed to export layouts: %w", err)
	}
	if err := s.exportPreferences(backup); err != nil {
		return fmt.Errorf("failed to export layout preferences: %w", err)
	}
	if err := s.exportSessions(backup); err != nil {
		return fmt.Errorf("failed to export sessions: %w", err)
	}
	if err := s.exportMistakes(backup); err != nil {
		return fmt.Errorf("failed to export mistakes: %w", err)
	}
	if err := s.exportResults(backup); err != nil {
		return fmt.Errorf("failed to export results: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d users, %d layouts, %d sessions, %d mistakes, %d results",
		len(backup.Users), len(backup.Layouts), len(backup.Sessions),
		len(backup.Mistakes), len(backup.Results))
	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importLayouts(backup.Layouts); err != nil {
		return fmt.Errorf("failed to import layouts: %w", err)
	}
	if err := s.importPreferences(backup.Prefs); err != nil {
		return fmt.Errorf("failed to import layout preferences: %w", err)
	}
	if err := s.importSessions(backup.Sessions); err != nil {
		return fmt.Errorf("failed to import sessions: %w", err)
	}
	if err := s.importMistakes(backup.Mistakes); err != nil {
		return fmt.Errorf("failed to import mistakes: %w", err)
	}
	if err := s.importResults(backup.Results); err != nil {
		return fmt.Errorf("failed to import results: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := "SELECT id, email, password_hash, name, oauth_provider, oauth_subject, is_admin, created_at, updated_at FROM users ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.OAuthProvider, &u.OAuthSubject, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportLayouts(backup *BackupData) error {
	query := "SELECT id, name, language, key_rows, is_custom, created_by, created_at, updated_at FROM layouts ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l LayoutBackup
		if err := rows.Scan(&l.ID, &l.Name, &l.Language, &l.KeyRows, &l.IsCustom, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return err
		}
		backup.Layouts = append(backup.Layouts, l)
	}
	return rows.Err()
}

func (s *BackupService) exportPreferences(backup *BackupData) error {
	query := "SELECT user_id, language, layout_id FROM layout_preferences ORDER BY user_id, language"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PreferenceBackup
		if err := rows.Scan(&p.UserID, &p.Language, &p.LayoutID); err != nil {
			return err
		}
		backup.Prefs = append(backup.Prefs, p)
	}
	return rows.Err()
}

func (s *BackupService) exportSessions(backup *BackupData) error {
	query := `SELECT id, user_id, target_text, transcript, language, difficulty, text_type,
		layout_id, duration_seconds, start_time, paused_at, time_left, status, created_at, updated_at
		FROM typing_sessions ORDER BY created_at`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var b SessionBackup
		if err := rows.Scan(&b.ID, &b.UserID, &b.TargetText, &b.Transcript, &b.Language, &b.Difficulty,
			&b.TextType, &b.LayoutID, &b.DurationSeconds, &b.StartTime, &b.PausedAt, &b.TimeLeft,
			&b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return err
		}
		backup.Sessions = append(backup.Sessions, b)
	}
	return rows.Err()
}

func (s *BackupService) exportMistakes(backup *BackupData) error {
	query := "SELECT session_id, pos, expected, actual, made_at FROM mistakes ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m MistakeBackup
		if err := rows.Scan(&m.SessionID, &m.Position, &m.Expected, &m.Actual, &m.MadeAt); err != nil {
			return err
		}
		backup.Mistakes = append(backup.Mistakes, m)
	}
	return rows.Err()
}

func (s *BackupService) exportResults(backup *BackupData) error {
	query := `SELECT session_id, user_id, net_wpm, gross_wpm, peak_wpm, accuracy, consistency,
		correct_chars, correct_words, incorrect_words, mistake_count,
		duration_seconds, language, difficulty, completed_at
		FROM results ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r ResultBackup
		if err := rows.Scan(&r.SessionID, &r.UserID, &r.NetWPM, &r.GrossWPM, &r.PeakWPM,
			&r.Accuracy, &r.Consistency, &r.CorrectChars, &r.CorrectWords, &r.IncorrectWords,
			&r.MistakeCount, &r.DurationSeconds, &r.Language, &r.Difficulty, &r.CompletedAt); err != nil {
			return err
		}
		backup.Results = append(backup.Results, r)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(users []UserBackup) error {
	query := `INSERT INTO users (id, email, password_hash, name, oauth_provider, oauth_subject, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, u := range users {
		if _, err := s.db.Exec(query, u.ID, u.Email, u.PasswordHash, u.Name,
			u.OAuthProvider, u.OAuthSubject, u.IsAdmin, u.CreatedAt, u.UpdatedAt); err != nil {
			return fmt.Errorf("user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importLayouts(layouts []LayoutBackup) error {
	query := `INSERT INTO layouts (id, name, language, key_rows, is_custom, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, l := range layouts {
		if _, err := s.db.Exec(query, l.ID, l.Name, l.Language, l.KeyRows,
			l.IsCustom, l.CreatedBy, l.CreatedAt, l.UpdatedAt); err != nil {
			// Built-in layouts are seeded by migrations; skip duplicates.
			log.Printf("Skipping layout %s: %v", l.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importPreferences(prefs []PreferenceBackup) error {
	query := "INSERT INTO layout_preferences (user_id, language, layout_id, updated_at) VALUES (?, ?, ?, ?)"
	for _, p := range prefs {
		if _, err := s.db.Exec(query, p.UserID, p.Language, p.LayoutID, time.Now()); err != nil {
			return fmt.Errorf("preference for user %d: %w", p.UserID, err)
		}
	}
	return nil
}

func (s *BackupService) importSessions(sessions []SessionBackup) error {
	query := `INSERT INTO typing_sessions
		(id, user_id, target_text, transcript, language, difficulty, text_type,
		 layout_id, duration_seconds, start_time, paused_at, time_left, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, b := range sessions {
		if _, err := s.db.Exec(query, b.ID, b.UserID, b.TargetText, b.Transcript,
			b.Language, b.Difficulty, b.TextType, b.LayoutID, b.DurationSeconds,
			b.StartTime, b.PausedAt, b.TimeLeft, b.Status, b.CreatedAt, b.UpdatedAt); err != nil {
			return fmt.Errorf("session %s: %w", b.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importMistakes(mistakes []MistakeBackup) error {
	query := "INSERT INTO mistakes (session_id, pos, expected, actual, made_at) VALUES (?, ?, ?, ?, ?)"
	for _, m := range mistakes {
		if _, err := s.db.Exec(query, m.SessionID, m.Position, m.Expected, m.Actual, m.MadeAt); err != nil {
			return fmt.Errorf("mistake in session %s: %w", m.SessionID, err)
		}
	}
	return nil
}

func (s *BackupService) importResults(results []ResultBackup) error {
	query := `INSERT INTO results
		(session_id, user_id, net_wpm, gross_wpm, peak_wpm, accuracy, consistency,
		 correct_chars, correct_words, incorrect_words, mistake_count,
		 duration_seconds, language, difficulty, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, r := range results {
		if _, err := s.db.Exec(query, r.SessionID, r.UserID, r.NetWPM, r.GrossWPM,
			r.PeakWPM, r.Accuracy, r.Consistency, r.CorrectChars, r.CorrectWords,
			r.IncorrectWords, r.MistakeCount, r.DurationSeconds, r.Language,
			r.Difficulty, r.CompletedAt); err != nil {
			return fmt.Errorf("result for session %s: %w", r.SessionID, err)
		}
	}
	return nil
}
