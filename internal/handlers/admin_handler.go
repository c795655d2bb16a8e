package handlers

import (
	"fmt"
	"net/http"
	"time"

	"typier/internal/service"
)

// AdminHandler exposes the operational endpoints: user listing and
// database backup/restore. All routes behind it require an admin account.
type AdminHandler struct {
	authService   *service.AuthService
	backupService *service.BackupService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *service.AuthService, backupService *service.BackupService) *AdminHandler {
	return &AdminHandler{
		authService:   authService,
		backupService: backupService,
	}
}

// ListUsers returns all registered accounts
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list users", "", err)
		return
	}

	views := make([]userView, len(users))
	for i := range users {
		views[i] = newUserView(&users[i])
	}
	respondJSON(w, http.StatusOK, views)
}

// ExportBackup streams the full database as a JSON download
func (h *AdminHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("typier-backup-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	if err := h.backupService.ExportToWriter(w); err != nil {
		// Headers are already out; all we can do is log.
		respondWithError(w, http.StatusInternalServerError, "Export failed", "Backup export failed", err)
	}
}

// ImportBackup restores the database from an uploaded JSON backup
func (h *AdminHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("backup")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing backup file upload", "", nil)
		return
	}
	defer file.Close()

	if err := h.backupService.ImportFromReader(file); err != nil {
		respondWithError(w, http.StatusUnprocessableEntity, "Import failed: "+err.Error(), "Backup import failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}
