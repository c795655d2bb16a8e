package handlers

import (
	"net/http"

	"typier/internal/service"
)

// SessionHandler exposes the typing session lifecycle over JSON
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Start creates a new typing session. Anonymous users get one too; only
// logged-in sessions feed stats and leaderboards.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language        string `json:"language"`
		Difficulty      string `json:"difficulty"`
		TextType        string `json:"textType"`
		LayoutID        string `json:"layoutId"`
		DurationSeconds int    `json:"durationSeconds"`
		TextLength      int    `json:"textLength"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.sessionService.StartSession(service.StartOptions{
		UserID:          userID(r.Context()),
		Language:        req.Language,
		Difficulty:      req.Difficulty,
		TextType:        req.TextType,
		LayoutID:        req.LayoutID,
		DurationSeconds: req.DurationSeconds,
		TextLength:      req.TextLength,
	})
	if err != nil {
		respondServiceError(w, err, "Failed to start session")
		return
	}

	respondJSON(w, http.StatusCreated, newSessionView(session))
}

// Get returns the current session snapshot
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionService.GetSession(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err, "Failed to load session")
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(session))
}

// Input applies one input event. The client always sends the full
// transcript typed so far, not a delta.
func (h *SessionHandler) Input(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transcript string `json:"transcript"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.sessionService.SubmitInput(r.PathValue("id"), req.Transcript)
	if err != nil {
		respondServiceError(w, err, "Failed to process input")
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(session))
}

// Pause freezes an active session
func (h *SessionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionService.Pause(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err, "Failed to pause session")
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(session))
}

// Resume reactivates a paused session
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionService.Resume(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err, "Failed to resume session")
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(session))
}

// Abandon cancels a session without producing a result
func (h *SessionHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionService.Abandon(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err, "Failed to abandon session")
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(session))
}

// Complete finalizes a session, typically on the client-side timer firing.
// Safe to call more than once; the stored result comes back unchanged.
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionService.CompleteSession(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err, "Failed to complete session")
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(session))
}
