package models

import "time"

// StatsSummary aggregates a user's completed sessions
type StatsSummary struct {
	Sessions       int
	AvgNetWPM      float64
	BestNetWPM     int
	AvgAccuracy    float64
	AvgConsistency float64
	// TrendSlope is the least-squares slope of net WPM over recent
	// sessions, in WPM per session. Positive means improving.
	TrendSlope float64
	// WPMVariation is the coefficient of variation of net WPM.
	WPMVariation float64
	// RecentAvgNetWPM is the rolling mean of net WPM over the last few
	// sessions, smoothing out single outlier runs.
	RecentAvgNetWPM float64
}

// DailyActivity is one day's rollup of completed sessions
type DailyActivity struct {
	Date      time.Time
	Sessions  int
	AvgNetWPM float64
}

// WeakChar aggregates mistakes against a single expected character
type WeakChar struct {
	Char     string
	Mistakes int
}

// Recommendation is an improvement suggestion derived from stored results
type Recommendation struct {
	Category string // "accuracy", "consistency", "speed", "drill"
	Message  string
	Priority int // lower is more important
}
