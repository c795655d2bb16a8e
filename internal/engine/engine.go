// Package engine implements the typing session kernel: the lifecycle state
// machine, per-input mistake detection and live statistics, and the final
// results scoring. It performs no I/O; every operation takes the current
// session snapshot and returns an updated one, and persistence belongs to
// the calling service layer.
package engine

import (
	"fmt"
	"math"
	"time"

	"typier/internal/models"
)

// NewSession creates an Idle session around a fixed target text. The
// countdown does not start until the first non-empty input arrives.
func NewSession(id string, userID *int64, targetText, language, difficulty, textType, layoutID string, durationSeconds int, now time.Time) models.Session {
	return models.Session{
		ID:              id,
		UserID:          userID,
		TargetText:      targetText,
		Language:        language,
		Difficulty:      difficulty,
		TextType:        textType,
		LayoutID:        layoutID,
		DurationSeconds: durationSeconds,
		TimeLeft:        float64(durationSeconds),
		Status:          models.StatusIdle,
		Live:            models.LiveStats{Accuracy: 100},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ProcessInput applies one input event to the session. The caller always
// submits the full current transcript, not a delta; a shorter string means
// the user deleted characters. Mistakes are detected only on the grown
// suffix, so backspacing never removes previously logged mistakes.
func ProcessInput(s models.Session, transcript string, timestamp time.Time) (models.Session, error) {
	if s.Status.IsTerminal() || s.Status == models.StatusPaused {
		return s, fmt.Errorf("process input on %s session %s: %w", s.Status, s.ID, ErrSessionNotActive)
	}

	if s.Status == models.StatusIdle {
		if transcript == "" {
			// The countdown starts on the first non-empty input.
			return s, nil
		}
		start := timestamp
		s.StartTime = &start
		s.Status = models.StatusActive
	}

	target := []rune(s.TargetText)
	prev := []rune(s.Transcript)
	next := []rune(transcript)
	s.Transcript = transcript

	// Mistake detection covers only indexes the transcript grew into.
	// Shrunk ranges are not re-evaluated; the log is an audit trail.
	for i := len(prev); i < len(next) && i < len(target); i++ {
		if target[i] != next[i] {
			s.Mistakes = append(s.Mistakes, models.Mistake{
				Position:  i,
				Expected:  string(target[i]),
				Actual:    string(next[i]),
				Timestamp: timestamp,
			})
		}
	}

	s.CursorWord, s.CursorOffset = cursorPosition(s.TargetText, len(next))

	correct := 0
	for i := 0; i < len(next) && i < len(target); i++ {
		if next[i] == target[i] {
			correct++
		}
	}

	elapsed := timestamp.Sub(*s.StartTime).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	elapsedMinutes := elapsed / 60

	wpm := 0
	if elapsedMinutes > 0 {
		wpm = int(math.Round(float64(correct) / 5 / elapsedMinutes))
	}

	accuracy := 100
	if len(next) > 0 {
		accuracy = int(math.Round(100 * float64(len(next)-len(s.Mistakes)) / float64(len(next))))
		if accuracy < 0 {
			accuracy = 0
		}
	}

	progress := 0.0
	if len(target) > 0 {
		progress = math.Min(100, 100*float64(len(next))/float64(len(target)))
	}

	s.Live = models.LiveStats{
		WPM:            wpm,
		Accuracy:       accuracy,
		ElapsedSeconds: elapsed,
		Progress:       progress,
	}

	s.TimeLeft = math.Max(0, float64(s.DurationSeconds)-elapsed)
	s.UpdatedAt = timestamp

	// A session completes when time runs out or the transcript matches the
	// target exactly. Reaching the target length with mismatches left is
	// not enough.
	if s.TimeLeft <= 0 || (len(next) >= len(target) && transcript == s.TargetText) {
		s.Status = models.StatusCompleted
	}

	return s, nil
}

// Pause freezes an active session: the countdown stops decrementing until
// resume. Pausing a session that has not started is a caller bug and fails.
func Pause(s models.Session, now time.Time) (models.Session, error) {
	if s.Status != models.StatusActive {
		return s, fmt.Errorf("cannot pause a %s session: %w", s.Status, ErrInvalidStateTransition)
	}
	s.Status = models.StatusPaused
	s.PausedAt = &now
	s.UpdatedAt = now
	return s, nil
}

// Resume reactivates a paused session. The start time shifts forward by the
// paused interval, so elapsed time and the countdown exclude the pause, and
// timeLeft is recomputed against the shifted clock.
func Resume(s models.Session, now time.Time) (models.Session, error) {
	if s.Status != models.StatusPaused {
		return s, fmt.Errorf("cannot resume a %s session: %w", s.Status, ErrInvalidStateTransition)
	}
	if s.PausedAt != nil && s.StartTime != nil {
		shifted := s.StartTime.Add(now.Sub(*s.PausedAt))
		s.StartTime = &shifted
		s.TimeLeft = math.Max(0, float64(s.DurationSeconds)-now.Sub(shifted).Seconds())
	}
	s.PausedAt = nil
	s.Status = models.StatusActive
	s.UpdatedAt = now
	return s, nil
}

// Abandon cancels a session from any non-terminal state.
func Abandon(s models.Session, now time.Time) (models.Session, error) {
	if s.Status.IsTerminal() {
		return s, fmt.Errorf("cannot abandon a %s session: %w", s.Status, ErrInvalidStateTransition)
	}
	s.Status = models.StatusAbandoned
	s.UpdatedAt = now
	return s, nil
}

// Complete finalizes the session and computes the authoritative results.
// Completing an already-completed session is idempotent and returns the
// stored result, so a timer-driven and an input-driven completion can both
// fire for the same session without one of them failing.
func Complete(s models.Session, now time.Time) (models.Session, models.FinalResult, error) {
	if s.Status == models.StatusCompleted && s.Result != nil {
		return s, *s.Result, nil
	}
	if s.Status == models.StatusAbandoned {
		return s, models.FinalResult{}, fmt.Errorf("cannot complete an abandoned session: %w", ErrInvalidStateTransition)
	}

	elapsed := 0.0
	if s.StartTime != nil {
		end := now
		if s.PausedAt != nil {
			// Completing a paused session does not charge the pause time.
			end = *s.PausedAt
		}
		elapsed = end.Sub(*s.StartTime).Seconds()
	}

	result := Score(s.TargetText, s.Transcript, s.Mistakes, elapsed)
	result.SessionID = s.ID
	result.UserID = s.UserID
	result.Language = s.Language
	result.Difficulty = s.Difficulty
	result.CompletedAt = now

	s.Status = models.StatusCompleted
	s.PausedAt = nil
	s.Result = &result
	s.UpdatedAt = now
	return s, result, nil
}

// cursorPosition maps a transcript length onto (word index, offset within
// word) over the target text. Word boundaries are single spaces. A
// transcript ending exactly on a boundary space parks the cursor at offset
// zero of the next word; ending mid-word yields the offset inside it.
func cursorPosition(targetText string, typed int) (word, offset int) {
	if typed <= 0 {
		return 0, 0
	}
	runes := []rune(targetText)
	wordStart := 0
	wordIdx := 0
	for i, r := range runes {
		if r != ' ' {
			continue
		}
		if typed <= i {
			return wordIdx, typed - wordStart
		}
		if typed == i+1 {
			// Boundary just typed: next word, offset zero.
			return wordIdx + 1, 0
		}
		wordIdx++
		wordStart = i + 1
	}
	if typed > len(runes) {
		typed = len(runes)
	}
	return wordIdx, typed - wordStart
}
