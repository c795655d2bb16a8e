package engine

import (
	"math"
	"strings"

	"typier/internal/models"
)

// Score computes the final results for a finished session from the target
// text, the full transcript, the mistake log and the wall-clock elapsed
// seconds. Scoring never fails: a zero or negative elapsed time degrades
// every rate-based metric to zero so completion can always persist a
// result.
func Score(targetText, transcript string, mistakes []models.Mistake, elapsedSeconds float64) models.FinalResult {
	target := []rune(targetText)
	typed := []rune(transcript)

	correctChars := 0
	overlap := len(typed)
	if len(target) < overlap {
		overlap = len(target)
	}
	for i := 0; i < overlap; i++ {
		if typed[i] == target[i] {
			correctChars++
		}
	}

	correctWords, incorrectWords := scoreWords(targetText, transcript)

	elapsedMinutes := elapsedSeconds / 60

	grossWPM := 0.0
	netWPM := 0.0
	if elapsedMinutes > 0 {
		grossWPM = float64(correctChars) / 5 / elapsedMinutes
		netWPM = math.Max(0, grossWPM-float64(len(mistakes))/elapsedMinutes)
	}

	accuracy := 100.0
	if len(typed) > 0 {
		accuracy = round2(100 * float64(correctChars) / float64(len(typed)))
	}

	return models.FinalResult{
		NetWPM:          int(math.Round(netWPM)),
		GrossWPM:        grossWPM,
		PeakWPM:         peakWPM(grossWPM, len(mistakes)),
		Accuracy:        accuracy,
		Consistency:     Consistency(mistakes),
		CorrectChars:    correctChars,
		CorrectWords:    correctWords,
		IncorrectWords:  incorrectWords,
		MistakeCount:    len(mistakes),
		DurationSeconds: elapsedSeconds,
	}
}

// scoreWords compares both texts word by word over the overlapping word
// count. Words beyond the shorter list are not counted either way.
func scoreWords(targetText, transcript string) (correct, incorrect int) {
	targetWords := strings.Fields(targetText)
	typedWords := strings.Fields(transcript)
	n := len(typedWords)
	if len(targetWords) < n {
		n = len(targetWords)
	}
	for i := 0; i < n; i++ {
		if typedWords[i] == targetWords[i] {
			correct++
		} else {
			incorrect++
		}
	}
	return correct, incorrect
}

// Consistency maps the variability of inter-mistake timing onto a 0-100
// score: the coefficient of variation of successive mistake-timestamp
// deltas, as max(0, 100 - 100*cv). Fewer than two mistakes leaves nothing
// to be inconsistent about and scores 100.
func Consistency(mistakes []models.Mistake) float64 {
	if len(mistakes) < 2 {
		return 100
	}

	intervals := make([]float64, 0, len(mistakes)-1)
	sum := 0.0
	for i := 1; i < len(mistakes); i++ {
		d := mistakes[i].Timestamp.Sub(mistakes[i-1].Timestamp).Seconds()
		intervals = append(intervals, d)
		sum += d
	}

	mean := sum / float64(len(intervals))
	if mean <= 0 {
		// All mistakes landed at the same instant; no spread to measure.
		return 100
	}

	variance := 0.0
	for _, d := range intervals {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(len(intervals))

	cv := math.Sqrt(variance) / mean
	return round2(math.Max(0, 100-100*cv))
}

// peakWPM approximates the best burst speed with a multiplier on the gross
// rate. Kept as a heuristic rather than a sliding-window maximum so values
// line up with historical results; it always satisfies peak >= average.
func peakWPM(grossWPM float64, mistakeCount int) int {
	factor := 1.2
	if mistakeCount < 5 {
		factor = 1.3
	}
	return int(math.Round(grossWPM * factor))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
