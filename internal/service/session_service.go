package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"typier/internal/engine"
	"typier/internal/models"
	"typier/internal/repository"
	"typier/internal/security"
	"typier/internal/texts"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrLayoutNotFound  = errors.New("layout not found")
)

// staleSessionTTL is how long an idle or paused session may sit untouched
// before the sweeper abandons it
const staleSessionTTL = time.Hour

// StartOptions describes a requested typing session. Zero values fall back
// to configured defaults.
type StartOptions struct {
	UserID          *int64
	Language        string
	Difficulty      string
	TextType        string
	LayoutID        string
	DurationSeconds int
	TextLength      int
}

// SessionService orchestrates typing sessions: it generates target text,
// runs every input event through the engine, and persists the outcome. The
// engine itself stays pure; all storage happens here.
type SessionService struct {
	sessionRepo *repository.SessionRepository
	resultRepo  *repository.ResultRepository
	layoutRepo  *repository.LayoutRepository
	provider    *texts.Provider

	defaultDurationSeconds int
	defaultTextLength      int
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	resultRepo *repository.ResultRepository,
	layoutRepo *repository.LayoutRepository,
	provider *texts.Provider,
	defaultDurationSeconds, defaultTextLength int,
) *SessionService {
	return &SessionService{
		sessionRepo:            sessionRepo,
		resultRepo:             resultRepo,
		layoutRepo:             layoutRepo,
		provider:               provider,
		defaultDurationSeconds: defaultDurationSeconds,
		defaultTextLength:      defaultTextLength,
	}
}

// StartSession creates a new Idle session with freshly generated target
// text. For logged-in users, word selection is biased toward the characters
// they mistype most.
func (s *SessionService) StartSession(opts StartOptions) (*models.Session, error) {
	if opts.Language == "" {
		opts.Language = "english"
	}
	if opts.Difficulty == "" {
		opts.Difficulty = "medium"
	}
	if opts.TextType == "" {
		opts.TextType = "words"
	}
	if opts.DurationSeconds <= 0 {
		opts.DurationSeconds = s.defaultDurationSeconds
	}
	if opts.TextLength <= 0 {
		opts.TextLength = s.defaultTextLength
	}

	layoutID, err := s.resolveLayout(opts.UserID, opts.Language, opts.LayoutID)
	if err != nil {
		return nil, err
	}

	var weak map[rune]struct{}
	if opts.UserID != nil {
		weak, err = s.weakCharSet(*opts.UserID)
		if err != nil {
			// Weak-char bias is an enhancement; a failed lookup should not
			// block starting a session.
			log.Printf("Warning: weak char lookup failed for user %d: %v", *opts.UserID, err)
		}
	}

	targetText, err := s.provider.Generate(texts.Request{
		Language:   opts.Language,
		Difficulty: opts.Difficulty,
		TextType:   opts.TextType,
		Length:     opts.TextLength,
		WeakChars:  weak,
	})
	if err != nil {
		return nil, err
	}

	session := engine.NewSession(
		security.NewID(), opts.UserID, targetText,
		opts.Language, opts.Difficulty, opts.TextType, layoutID,
		opts.DurationSeconds, time.Now(),
	)

	if err := s.sessionRepo.Save(&session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return &session, nil
}

// resolveLayout picks the layout for a session: an explicit request wins,
// then the user's stored preference, then the language default.
func (s *SessionService) resolveLayout(userID *int64, language, requested string) (string, error) {
	if requested != "" {
		layout, err := s.layoutRepo.FindByID(requested)
		if err != nil {
			return "", fmt.Errorf("failed to look up layout: %w", err)
		}
		if layout == nil {
			return "", ErrLayoutNotFound
		}
		return layout.ID, nil
	}

	if userID != nil {
		preferred, err := s.layoutRepo.GetPreference(*userID, language)
		if err != nil {
			return "", fmt.Errorf("failed to look up layout preference: %w", err)
		}
		if preferred != "" {
			return preferred, nil
		}
	}

	layouts, err := s.layoutRepo.ListByLanguage(language, nil)
	if err != nil {
		return "", fmt.Errorf("failed to list layouts: %w", err)
	}
	if len(layouts) == 0 {
		return "qwerty", nil
	}
	return layouts[0].ID, nil
}

func (s *SessionService) weakCharSet(userID int64) (map[rune]struct{}, error) {
	chars, err := s.sessionRepo.WeakChars(userID, 10)
	if err != nil {
		return nil, err
	}
	if len(chars) == 0 {
		return nil, nil
	}

	weak := make(map[rune]struct{}, len(chars))
	for _, wc := range chars {
		for _, r := range wc.Char {
			weak[r] = struct{}{}
		}
	}
	return weak, nil
}

// GetSession loads a session with its mistake log and, when completed, its
// stored result
func (s *SessionService) GetSession(id string) (*models.Session, error) {
	session, err := s.sessionRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.Status == models.StatusCompleted {
		result, err := s.resultRepo.FindBySessionID(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load result: %w", err)
		}
		session.Result = result
	}
	return session, nil
}

// SubmitInput applies one input event: the full current transcript as typed
// so far. When the event completes the session, the final result is
// computed and persisted before returning.
func (s *SessionService) SubmitInput(id, transcript string) (*models.Session, error) {
	session, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}

	prevMistakes := len(session.Mistakes)
	updated, err := engine.ProcessInput(*session, transcript, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Update(&updated); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	if err := s.sessionRepo.AppendMistakes(id, updated.Mistakes[prevMistakes:]); err != nil {
		return nil, fmt.Errorf("failed to record mistakes: %w", err)
	}

	if updated.Status == models.StatusCompleted {
		return s.finalize(&updated, time.Now())
	}
	return &updated, nil
}

// Pause freezes an active session
func (s *SessionService) Pause(id string) (*models.Session, error) {
	return s.transition(id, engine.Pause)
}

// Resume reactivates a paused session. The countdown stays frozen for the
// paused interval; only active time is charged.
func (s *SessionService) Resume(id string) (*models.Session, error) {
	return s.transition(id, engine.Resume)
}

// Abandon cancels a session. Abandoned sessions never produce a result.
func (s *SessionService) Abandon(id string) (*models.Session, error) {
	return s.transition(id, engine.Abandon)
}

func (s *SessionService) transition(id string, op func(models.Session, time.Time) (models.Session, error)) (*models.Session, error) {
	session, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}

	updated, err := op(*session, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Update(&updated); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return &updated, nil
}

// CompleteSession finalizes a session, typically when its client-side timer
// fires. Completing an already-completed session returns the stored result
// unchanged.
func (s *SessionService) CompleteSession(id string) (*models.Session, error) {
	session, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}
	if session.Status == models.StatusCompleted && session.Result != nil {
		return session, nil
	}
	return s.finalize(session, time.Now())
}

// finalize runs the engine's completion, stores the result, and marks the
// session row completed. The unique index on results.session_id backstops
// the idempotency check against concurrent completions.
func (s *SessionService) finalize(session *models.Session, now time.Time) (*models.Session, error) {
	stored, err := s.resultRepo.FindBySessionID(session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for stored result: %w", err)
	}
	if stored != nil {
		session.Status = models.StatusCompleted
		session.Result = stored
		return session, nil
	}

	completed, result, err := engine.Complete(*session, now)
	if err != nil {
		return nil, err
	}

	if err := s.sessionRepo.Update(&completed); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	id, err := s.resultRepo.Save(&result)
	if err != nil {
		return nil, fmt.Errorf("failed to save result: %w", err)
	}
	result.ID = id
	completed.Result = &result

	return &completed, nil
}

// SweepExpired force-completes active sessions whose countdown ran out
// without a closing input event, and abandons idle and paused sessions
// nobody has touched in a while. Runs periodically from the server's
// background loop.
func (s *SessionService) SweepExpired() {
	now := time.Now()

	running, err := s.sessionRepo.FindRunning()
	if err != nil {
		log.Printf("Session sweep: failed to list running sessions: %v", err)
		return
	}

	for i := range running {
		session := &running[i]
		if session.StartTime == nil {
			continue
		}
		if now.Sub(*session.StartTime).Seconds() < float64(session.DurationSeconds) {
			continue
		}

		// Score at the moment the countdown actually ended, not at sweep
		// time.
		deadline := session.StartTime.Add(time.Duration(session.DurationSeconds) * time.Second)
		if _, err := s.finalize(session, deadline); err != nil {
			log.Printf("Session sweep: failed to complete session %s: %v", session.ID, err)
			continue
		}
		log.Printf("Session sweep: completed expired session %s", session.ID)
	}

	abandoned, err := s.sessionRepo.AbandonStale(now.Add(-staleSessionTTL))
	if err != nil {
		log.Printf("Session sweep: failed to abandon stale sessions: %v", err)
		return
	}
	if abandoned > 0 {
		log.Printf("Session sweep: abandoned %d stale sessions", abandoned)
	}
}
