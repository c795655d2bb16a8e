package handlers

import (
	"net/http"

	"typier/internal/service"
)

// LayoutHandler exposes the keyboard layout registry over JSON
type LayoutHandler struct {
	layoutService *service.LayoutService
}

// NewLayoutHandler creates a new layout handler
func NewLayoutHandler(layoutService *service.LayoutService) *LayoutHandler {
	return &LayoutHandler{layoutService: layoutService}
}

// List returns layouts for a language: built-ins plus the caller's customs
func (h *LayoutHandler) List(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")
	if language == "" {
		language = "english"
	}

	layouts, err := h.layoutService.ListLayouts(language, userID(r.Context()))
	if err != nil {
		respondServiceError(w, err, "Failed to list layouts")
		return
	}
	respondJSON(w, http.StatusOK, newLayoutViews(layouts))
}

// Get returns one layout
func (h *LayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	layout, err := h.layoutService.GetLayout(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err, "Failed to load layout")
		return
	}
	respondJSON(w, http.StatusOK, newLayoutView(layout))
}

// Create stores a custom layout for the logged-in user
func (h *LayoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		Language string   `json:"language"`
		Rows     []string `json:"rows"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	layout, err := h.layoutService.CreateCustomLayout(user.ID, req.ID, req.Name, req.Language, req.Rows)
	if err != nil {
		respondServiceError(w, err, "Failed to create layout")
		return
	}
	respondJSON(w, http.StatusCreated, newLayoutView(layout))
}

// Update rewrites a custom layout owned by the caller
func (h *LayoutHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Name string   `json:"name"`
		Rows []string `json:"rows"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	layout, err := h.layoutService.UpdateCustomLayout(user.ID, r.PathValue("id"), req.Name, req.Rows)
	if err != nil {
		respondServiceError(w, err, "Failed to update layout")
		return
	}
	respondJSON(w, http.StatusOK, newLayoutView(layout))
}

// Delete removes a custom layout owned by the caller
func (h *LayoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.layoutService.DeleteCustomLayout(user.ID, r.PathValue("id")); err != nil {
		respondServiceError(w, err, "Failed to delete layout")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// GetPreference returns the caller's effective layout for a language
func (h *LayoutHandler) GetPreference(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	language := r.URL.Query().Get("language")
	if language == "" {
		language = "english"
	}

	layout, err := h.layoutService.GetPreference(user.ID, language)
	if err != nil {
		respondServiceError(w, err, "Failed to load layout preference")
		return
	}
	respondJSON(w, http.StatusOK, newLayoutView(layout))
}

// SetPreference stores the caller's preferred layout for a language
func (h *LayoutHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Language string `json:"language"`
		LayoutID string `json:"layoutId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.layoutService.SetPreference(user.ID, req.Language, req.LayoutID); err != nil {
		respondServiceError(w, err, "Failed to set layout preference")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
