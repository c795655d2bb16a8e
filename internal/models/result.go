package models

import "time"

// FinalResult is the authoritative, immutable record computed once when a
// session completes. Live stats approximate it during the session.
type FinalResult struct {
	ID              int64
	SessionID       string
	UserID          *int64
	NetWPM          int
	GrossWPM        float64
	PeakWPM         int
	Accuracy        float64 // percent, rounded to 2 decimal places
	Consistency     float64 // 0-100, derived from inter-mistake timing
	CorrectChars    int
	CorrectWords    int
	IncorrectWords  int
	MistakeCount    int
	DurationSeconds float64
	Language        string
	Difficulty      string
	CompletedAt     time.Time
}

// LeaderboardEntry is a ranked result row for a language board
type LeaderboardEntry struct {
	Rank        int
	UserID      int64
	UserName    string
	NetWPM      int
	Accuracy    float64
	Language    string
	CompletedAt time.Time
}
