package models

import "time"

// SessionStatus represents the lifecycle state of a typing session
type SessionStatus string

const (
	StatusIdle      SessionStatus = "idle"
	StatusActive    SessionStatus = "active"
	StatusPaused    SessionStatus = "paused"
	StatusCompleted SessionStatus = "completed"
	StatusAbandoned SessionStatus = "abandoned"
)

// IsTerminal reports whether no further transitions are allowed
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Session represents one timed typing attempt
type Session struct {
	ID         string
	UserID     *int64 // nil for anonymous sessions
	TargetText string
	Transcript string
	Language   string
	Difficulty string
	TextType   string
	LayoutID   string

	// DurationSeconds is the configured countdown; TimeLeft only decreases
	// once StartTime is set and is clamped at zero. PausedAt marks when the
	// current pause began; resuming shifts StartTime forward by the paused
	// interval so the countdown is frozen while paused.
	DurationSeconds int
	StartTime       *time.Time
	PausedAt        *time.Time
	TimeLeft        float64
	Status          SessionStatus

	// Cursor fields are derived from the transcript on every update,
	// never stored authoritatively.
	CursorWord   int
	CursorOffset int

	Mistakes []Mistake
	Live     LiveStats

	// Result is set exactly once, when the session completes. Re-invoking
	// completion returns this stored value.
	Result *FinalResult

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Mistake is one entry in the append-only mistake log
type Mistake struct {
	Position  int
	Expected  string
	Actual    string
	Timestamp time.Time
}

// LiveStats is the derived snapshot recomputed wholesale on every input
// event; it is an estimate, not the persisted figure.
type LiveStats struct {
	WPM            int
	Accuracy       int
	ElapsedSeconds float64
	Progress       float64
}
