package handlers

import (
	"time"

	"typier/internal/models"
)

// sessionView is the JSON shape of a typing session. The target text is
// included so the client can render it; the mistake log is not, only its
// size.
type sessionView struct {
	ID              string     `json:"id"`
	TargetText      string     `json:"targetText"`
	Transcript      string     `json:"transcript"`
	Language        string     `json:"language"`
	Difficulty      string     `json:"difficulty"`
	TextType        string     `json:"textType"`
	LayoutID        string     `json:"layoutId"`
	DurationSeconds int        `json:"durationSeconds"`
	TimeLeft        float64    `json:"timeLeft"`
	Status          string     `json:"status"`
	CursorWord      int        `json:"cursorWord"`
	CursorOffset    int        `json:"cursorOffset"`
	MistakeCount    int        `json:"mistakeCount"`
	Live            liveView   `json:"live"`
	Result          *resultView `json:"result,omitempty"`
}

type liveView struct {
	WPM            int     `json:"wpm"`
	Accuracy       int     `json:"accuracy"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
	Progress       float64 `json:"progress"`
}

type resultView struct {
	SessionID       string    `json:"sessionId"`
	NetWPM          int       `json:"netWPM"`
	GrossWPM        float64   `json:"grossWPM"`
	PeakWPM         int       `json:"peakWPM"`
	Accuracy        float64   `json:"accuracy"`
	Consistency     float64   `json:"consistency"`
	CorrectChars    int       `json:"correctChars"`
	CorrectWords    int       `json:"correctWords"`
	IncorrectWords  int       `json:"incorrectWords"`
	MistakeCount    int       `json:"mistakeCount"`
	DurationSeconds float64   `json:"durationSeconds"`
	Language        string    `json:"language"`
	Difficulty      string    `json:"difficulty"`
	CompletedAt     time.Time `json:"completedAt"`
}

type layoutView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Language string   `json:"language"`
	Rows     []string `json:"rows"`
	IsCustom bool     `json:"isCustom"`
}

type userView struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin"`
}

type leaderboardEntryView struct {
	Rank        int       `json:"rank"`
	UserName    string    `json:"userName"`
	NetWPM      int       `json:"netWPM"`
	Accuracy    float64   `json:"accuracy"`
	Language    string    `json:"language"`
	CompletedAt time.Time `json:"completedAt"`
}

func newSessionView(s *models.Session) sessionView {
	view := sessionView{
		ID:              s.ID,
		TargetText:      s.TargetText,
		Transcript:      s.Transcript,
		Language:        s.Language,
		Difficulty:      s.Difficulty,
		TextType:        s.TextType,
		LayoutID:        s.LayoutID,
		DurationSeconds: s.DurationSeconds,
		TimeLeft:        s.TimeLeft,
		Status:          string(s.Status),
		CursorWord:      s.CursorWord,
		CursorOffset:    s.CursorOffset,
		MistakeCount:    len(s.Mistakes),
		Live: liveView{
			WPM:            s.Live.WPM,
			Accuracy:       s.Live.Accuracy,
			ElapsedSeconds: s.Live.ElapsedSeconds,
			Progress:       s.Live.Progress,
		},
	}
	if s.Result != nil {
		result := newResultView(s.Result)
		view.Result = &result
	}
	return view
}

func newResultView(r *models.FinalResult) resultView {
	return resultView{
		SessionID:       r.SessionID,
		NetWPM:          r.NetWPM,
		GrossWPM:        r.GrossWPM,
		PeakWPM:         r.PeakWPM,
		Accuracy:        r.Accuracy,
		Consistency:     r.Consistency,
		CorrectChars:    r.CorrectChars,
		CorrectWords:    r.CorrectWords,
		IncorrectWords:  r.IncorrectWords,
		MistakeCount:    r.MistakeCount,
		DurationSeconds: r.DurationSeconds,
		Language:        r.Language,
		Difficulty:      r.Difficulty,
		CompletedAt:     r.CompletedAt,
	}
}

func newLayoutView(l *models.Layout) layoutView {
	return layoutView{
		ID:       l.ID,
		Name:     l.Name,
		Language: l.Language,
		Rows:     l.Rows,
		IsCustom: l.IsCustom,
	}
}

func newLayoutViews(layouts []models.Layout) []layoutView {
	views := make([]layoutView, len(layouts))
	for i := range layouts {
		views[i] = newLayoutView(&layouts[i])
	}
	return views
}

func newUserView(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin}
}
