package engine

import (
	"errors"
	"testing"
	"time"

	"typier/internal/models"
)

var t0 = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestSession(target string, durationSeconds int) models.Session {
	return NewSession("sess-1", nil, target, "english", "medium", "words", "qwerty", durationSeconds, t0)
}

func TestFirstInputStartsSession(t *testing.T) {
	s := newTestSession("cat sat", 60)

	s, err := ProcessInput(s, "c", t0.Add(2*time.Second))
	if err != nil {
		t.Fatalf("ProcessInput() error = %v", err)
	}
	if s.Status != models.StatusActive {
		t.Errorf("status = %v, want active", s.Status)
	}
	if s.StartTime == nil || !s.StartTime.Equal(t0.Add(2*time.Second)) {
		t.Errorf("start time = %v, want event timestamp", s.StartTime)
	}
}

func TestEmptyInputDoesNotStartSession(t *testing.T) {
	s := newTestSession("cat sat", 60)

	s, err := ProcessInput(s, "", t0)
	if err != nil {
		t.Fatalf("ProcessInput() error = %v", err)
	}
	if s.Status != models.StatusIdle {
		t.Errorf("status = %v, want idle", s.Status)
	}
	if s.StartTime != nil {
		t.Errorf("start time = %v, want nil", s.StartTime)
	}
}

func TestMistakeLogIsMonotonicAndBounded(t *testing.T) {
	s := newTestSession("cat sat", 60)

	inputs := []string{"c", "ca", "cam", "ca", "cat", "cat s", "cat sa", "cat sax", "cat saxyz"}
	prev := 0
	for i, input := range inputs {
		var err error
		s, err = ProcessInput(s, input, t0.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("input %q: %v", input, err)
		}
		if len(s.Mistakes) < prev {
			t.Fatalf("input %q: mistake log shrank from %d to %d", input, prev, len(s.Mistakes))
		}
		prev = len(s.Mistakes)
	}

	// "cam" logs one mistake, "cat sax" a second; the overflow in
	// "cat saxyz" is past the target and must not be logged.
	if len(s.Mistakes) != 2 {
		t.Fatalf("mistake count = %d, want 2", len(s.Mistakes))
	}
	for _, m := range s.Mistakes {
		if m.Position >= len([]rune(s.TargetText)) {
			t.Errorf("mistake position %d out of target range", m.Position)
		}
	}
}

func TestBackspaceDoesNotEraseMistakes(t *testing.T) {
	s := newTestSession("cat sat", 60)

	var err error
	s, err = ProcessInput(s, "cax", t0.Add(time.Second))
	if err != nil {
		t.Fatalf("ProcessInput() error = %v", err)
	}
	if len(s.Mistakes) != 1 {
		t.Fatalf("mistake count after wrong char = %d, want 1", len(s.Mistakes))
	}

	// Backspace the wrong char out and retype it correctly.
	s, err = ProcessInput(s, "ca", t0.Add(2*time.Second))
	if err != nil {
		t.Fatalf("ProcessInput() error = %v", err)
	}
	s, err = ProcessInput(s, "cat", t0.Add(3*time.Second))
	if err != nil {
		t.Fatalf("ProcessInput() error = %v", err)
	}

	if len(s.Mistakes) != 1 {
		t.Errorf("mistake count after correction = %d, want 1 (audit trail)", len(s.Mistakes))
	}
	if s.Mistakes[0].Expected != "t" || s.Mistakes[0].Actual != "x" {
		t.Errorf("mistake = %+v, want expected 't' actual 'x'", s.Mistakes[0])
	}

	// Final scoring uses only the final transcript.
	result := Score(s.TargetText, s.Transcript, s.Mistakes, 30)
	if result.CorrectChars != 3 {
		t.Errorf("correct chars = %d, want 3", result.CorrectChars)
	}
}

func TestEqualLengthMismatchDoesNotComplete(t *testing.T) {
	s := newTestSession("cat sat", 60)

	var err error
	s, err = ProcessInput(s, "cat sam", t0.Add(5*time.Second))
	if err != nil {
		t.Fatalf("ProcessInput() error = %v", err)
	}
	if s.Status == models.StatusCompleted {
		t.Error("length-equal but mismatched transcript marked complete")
	}
}

func TestExactMatchCompletes(t *testing.T) {
	s := newTestSession("cat sat", 60)

	var err error
	s, err = ProcessInput(s, "cat", t0.Add(2*time.Second))
	if err != nil {
		t.Fatalf("ProcessInput() error = %v", err)
	}
	s, err = ProcessInput(s, "cat sat", t0.Add(5*time.Second))
	if err != nil {
		t.Fatalf("ProcessInput() error = %v", err)
	}
	if s.Status != models.StatusCompleted {
		t.Errorf("status = %v, want completed", s.Status)
	}
}

func TestTimeExhaustionCompletes(t *testing.T) {
	s := newTestSession("cat sat", 30)

	var err error
	s, err = ProcessInput(s, "c", t0)
	if err != nil {
		t.Fatalf("ProcessInput() error = %v", err)
	}
	s, err = ProcessInput(s, "ca", t0.Add(31*time.Second))
	if err != nil {
		t.Fatalf("ProcessInput() error = %v", err)
	}
	if s.TimeLeft != 0 {
		t.Errorf("time left = %v, want clamped to 0", s.TimeLeft)
	}
	if s.Status != models.StatusCompleted {
		t.Errorf("status = %v, want completed", s.Status)
	}
}

func TestInputOnTerminalSessionFails(t *testing.T) {
	for _, status := range []models.SessionStatus{models.StatusCompleted, models.StatusAbandoned} {
		s := newTestSession("cat sat", 60)
		s.Status = status

		_, err := ProcessInput(s, "c", t0)
		if !errors.Is(err, ErrSessionNotActive) {
			t.Errorf("input on %s session: error = %v, want ErrSessionNotActive", status, err)
		}
	}
}

func TestPauseFreezesCountdown(t *testing.T) {
	s := newTestSession("cat sat", 120)

	var err error
	s, err = ProcessInput(s, "c", t0)
	if err != nil {
		t.Fatalf("ProcessInput() error = %v", err)
	}

	s, err = Pause(s, t0.Add(10*time.Second))
	if err != nil {
		t.Fatalf("Pause() error = %v", err)
	}

	if _, err := ProcessInput(s, "ca", t0.Add(11*time.Second)); !errors.Is(err, ErrSessionNotActive) {
		t.Fatalf("input while paused: error = %v, want ErrSessionNotActive", err)
	}

	// Ten seconds spent paused must not count against the clock.
	s, err = Resume(s, t0.Add(20*time.Second))
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if s.StartTime == nil || !s.StartTime.Equal(t0.Add(10*time.Second)) {
		t.Errorf("start time = %v, want shifted by the paused interval", s.StartTime)
	}
	if s.TimeLeft != 110 {
		t.Errorf("time left after resume = %v, want 110", s.TimeLeft)
	}
	if s.PausedAt != nil {
		t.Errorf("paused at = %v, want cleared", s.PausedAt)
	}

	s, err = ProcessInput(s, "ca", t0.Add(30*time.Second))
	if err != nil {
		t.Fatalf("input after resume: error = %v", err)
	}
	if s.Live.ElapsedSeconds != 20 {
		t.Errorf("elapsed = %v, want 20 (pause excluded)", s.Live.ElapsedSeconds)
	}
	if s.TimeLeft != 100 {
		t.Errorf("time left = %v, want 100", s.TimeLeft)
	}
}

func TestCompleteWhilePausedExcludesPauseTime(t *testing.T) {
	s := newTestSession("cat sat", 120)

	var err error
	s, err = ProcessInput(s, "cat", t0)
	if err != nil {
		t.Fatalf("ProcessInput() error = %v", err)
	}
	s, err = Pause(s, t0.Add(30*time.Second))
	if err != nil {
		t.Fatalf("Pause() error = %v", err)
	}

	// The timer fires an hour later; only the 30 active seconds count.
	_, result, err := Complete(s, t0.Add(time.Hour))
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if result.DurationSeconds != 30 {
		t.Errorf("duration = %v, want 30", result.DurationSeconds)
	}
}

func TestPauseOnIdleFails(t *testing.T) {
	s := newTestSession("cat sat", 60)

	if _, err := Pause(s, t0); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("Pause() on idle: error = %v, want ErrInvalidStateTransition", err)
	}
}

func TestAbandonTransitions(t *testing.T) {
	tests := []struct {
		name    string
		status  models.SessionStatus
		wantErr bool
	}{
		{"from idle", models.StatusIdle, false},
		{"from active", models.StatusActive, false},
		{"from paused", models.StatusPaused, false},
		{"from completed", models.StatusCompleted, true},
		{"from abandoned", models.StatusAbandoned, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession("cat sat", 60)
			s.Status = tt.status

			s, err := Abandon(s, t0)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStateTransition) {
					t.Errorf("error = %v, want ErrInvalidStateTransition", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Abandon() error = %v", err)
			}
			if s.Status != models.StatusAbandoned {
				t.Errorf("status = %v, want abandoned", s.Status)
			}
		})
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	s := newTestSession("cat sat", 60)

	var err error
	s, err = ProcessInput(s, "cat", t0)
	if err != nil {
		t.Fatalf("ProcessInput() error = %v", err)
	}

	s, first, err := Complete(s, t0.Add(20*time.Second))
	if err != nil {
		t.Fatalf("first Complete() error = %v", err)
	}

	// Second trigger arrives later (timer vs input race) but must return
	// the stored result, not rescore.
	_, second, err := Complete(s, t0.Add(45*time.Second))
	if err != nil {
		t.Fatalf("second Complete() error = %v", err)
	}
	if first != second {
		t.Errorf("results differ across completions:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestCompleteAbandonedFails(t *testing.T) {
	s := newTestSession("cat sat", 60)
	s.Status = models.StatusAbandoned

	if _, _, err := Complete(s, t0); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("Complete() on abandoned: error = %v, want ErrInvalidStateTransition", err)
	}
}

func TestCompleteWithoutInputScoresZero(t *testing.T) {
	s := newTestSession("cat sat", 60)

	_, result, err := Complete(s, t0)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if result.NetWPM != 0 || result.GrossWPM != 0 {
		t.Errorf("rates = net %d gross %v, want zeroes", result.NetWPM, result.GrossWPM)
	}
	if result.Accuracy != 100 {
		t.Errorf("accuracy for empty transcript = %v, want 100", result.Accuracy)
	}
}

func TestLiveAccuracyBounds(t *testing.T) {
	s := newTestSession("abcdef", 60)

	// Every typed character wrong, repeatedly corrected and re-mistyped,
	// inflating the mistake log past the transcript length.
	inputs := []string{"z", "", "y", "", "x", "", "w"}
	for i, input := range inputs {
		var err error
		s, err = ProcessInput(s, input, t0.Add(time.Duration(i)*time.Second))
		if err != nil {
			t.Fatalf("input %q: %v", input, err)
		}
		if s.Live.Accuracy < 0 || s.Live.Accuracy > 100 {
			t.Fatalf("input %q: accuracy %d out of [0,100]", input, s.Live.Accuracy)
		}
	}
}

func TestCursorPosition(t *testing.T) {
	const target = "the quick fox"

	tests := []struct {
		name       string
		typed      int
		wantWord   int
		wantOffset int
	}{
		{"nothing typed", 0, 0, 0},
		{"mid first word", 2, 0, 2},
		{"end of first word", 3, 0, 3},
		{"boundary space typed", 4, 1, 0},
		{"mid second word", 7, 1, 3},
		{"second boundary typed", 10, 2, 0},
		{"mid last word", 12, 2, 2},
		{"full text", 13, 2, 3},
		{"past the end", 20, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, offset := cursorPosition(target, tt.typed)
			if word != tt.wantWord || offset != tt.wantOffset {
				t.Errorf("cursorPosition(%d) = (%d, %d), want (%d, %d)",
					tt.typed, word, offset, tt.wantWord, tt.wantOffset)
			}
		})
	}
}
