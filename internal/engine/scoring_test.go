package engine

import (
	"testing"
	"time"

	"typier/internal/models"
)

func mistakesAt(offsets ...time.Duration) []models.Mistake {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	out := make([]models.Mistake, len(offsets))
	for i, off := range offsets {
		out[i] = models.Mistake{Position: i, Expected: "a", Actual: "b", Timestamp: base.Add(off)}
	}
	return out
}

func TestScoreCleanMinute(t *testing.T) {
	// 25 characters, 5 words, typed perfectly in exactly one minute.
	const target = "apple berry cedar dogs ax"

	result := Score(target, target, nil, 60)

	if result.CorrectChars != 25 {
		t.Errorf("correct chars = %d, want 25", result.CorrectChars)
	}
	if result.NetWPM != 5 {
		t.Errorf("net WPM = %d, want 5", result.NetWPM)
	}
	if result.Accuracy != 100 {
		t.Errorf("accuracy = %v, want 100", result.Accuracy)
	}
	if result.Consistency != 100 {
		t.Errorf("consistency = %v, want 100 with no mistakes", result.Consistency)
	}
	if result.CorrectWords != 5 || result.IncorrectWords != 0 {
		t.Errorf("words = %d/%d, want 5/0", result.CorrectWords, result.IncorrectWords)
	}
}

func TestScoreNetWPMNeverNegative(t *testing.T) {
	// Mistake penalty far exceeds the gross rate.
	result := Score("abcdef", "abcdef", mistakesAt(0, time.Second, 2*time.Second, 3*time.Second, 4*time.Second, 5*time.Second, 6*time.Second, 7*time.Second), 10)

	if result.NetWPM < 0 {
		t.Errorf("net WPM = %d, want >= 0", result.NetWPM)
	}
	if result.NetWPM != 0 {
		t.Errorf("net WPM = %d, want clamped to 0", result.NetWPM)
	}
}

func TestScoreZeroElapsedDegradesToZero(t *testing.T) {
	result := Score("cat sat", "cat sat", nil, 0)

	if result.GrossWPM != 0 || result.NetWPM != 0 || result.PeakWPM != 0 {
		t.Errorf("rates = gross %v net %d peak %d, want all 0", result.GrossWPM, result.NetWPM, result.PeakWPM)
	}
	if result.CorrectChars != 7 {
		t.Errorf("correct chars = %d, want 7 (counting is time-independent)", result.CorrectChars)
	}
}

func TestScoreWordComparison(t *testing.T) {
	tests := []struct {
		name          string
		target        string
		transcript    string
		wantCorrect   int
		wantIncorrect int
	}{
		{"all correct", "cat sat mat", "cat sat mat", 3, 0},
		{"one wrong word", "cat sat mat", "cat sit mat", 2, 1},
		{"short transcript not penalized", "cat sat mat", "cat", 1, 0},
		{"extra words not counted", "cat", "cat sat mat", 1, 0},
		{"empty transcript", "cat sat", "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, incorrect := scoreWords(tt.target, tt.transcript)
			if correct != tt.wantCorrect || incorrect != tt.wantIncorrect {
				t.Errorf("scoreWords() = %d/%d, want %d/%d",
					correct, incorrect, tt.wantCorrect, tt.wantIncorrect)
			}
		})
	}
}

func TestScoreAccuracyBounds(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		transcript string
		want       float64
	}{
		{"empty transcript", "cat sat", "", 100},
		{"all wrong", "aaaa", "bbbb", 0},
		{"half right", "aabb", "aacc", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Score(tt.target, tt.transcript, nil, 30)
			if result.Accuracy != tt.want {
				t.Errorf("accuracy = %v, want %v", result.Accuracy, tt.want)
			}
			if result.Accuracy < 0 || result.Accuracy > 100 {
				t.Errorf("accuracy %v out of [0,100]", result.Accuracy)
			}
		})
	}
}

func TestConsistency(t *testing.T) {
	tests := []struct {
		name     string
		mistakes []models.Mistake
		want     float64
	}{
		{"no mistakes", nil, 100},
		{"single mistake", mistakesAt(0), 100},
		{"evenly spaced", mistakesAt(0, time.Second, 2*time.Second, 3*time.Second), 100},
		{"same instant", mistakesAt(0, 0, 0), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Consistency(tt.mistakes)
			if got != tt.want {
				t.Errorf("Consistency() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConsistencyDropsWithVariance(t *testing.T) {
	steady := Consistency(mistakesAt(0, time.Second, 2*time.Second, 3*time.Second))
	erratic := Consistency(mistakesAt(0, 100*time.Millisecond, 5*time.Second, 5100*time.Millisecond))

	if erratic >= steady {
		t.Errorf("erratic timing scored %v, steady %v; want erratic lower", erratic, steady)
	}
	if erratic < 0 || erratic > 100 {
		t.Errorf("consistency %v out of [0,100]", erratic)
	}
}

func TestPeakWPMAtLeastAverage(t *testing.T) {
	tests := []struct {
		name     string
		mistakes []models.Mistake
	}{
		{"few mistakes", mistakesAt(0, time.Second)},
		{"many mistakes", mistakesAt(0, time.Second, 2*time.Second, 3*time.Second, 4*time.Second, 5*time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Score("apple berry cedar dogs ax", "apple berry cedar dogs ax", tt.mistakes, 60)
			if float64(result.PeakWPM) < result.GrossWPM {
				t.Errorf("peak WPM %d below gross %v", result.PeakWPM, result.GrossWPM)
			}
		})
	}
}
