package repository

import (
	"database/sql"
	"strings"
	"time"

	"typier/internal/database"
	"typier/internal/models"
)

// LayoutRepository is the layout registry's storage: built-in layouts
// seeded by migrations plus user-created custom layouts.
type LayoutRepository struct {
	db *database.DB
}

// NewLayoutRepository creates a new layout repository
func NewLayoutRepository(db *database.DB) *LayoutRepository {
	return &LayoutRepository{db: db}
}

const layoutColumns = "id, name, language, key_rows, is_custom, created_by, created_at, updated_at"

// FindByID returns a layout, or nil when unknown
func (r *LayoutRepository) FindByID(id string) (*models.Layout, error) {
	query := "SELECT " + layoutColumns + " FROM layouts WHERE id = ?"

	layout, err := scanLayout(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return layout, err
}

// ListByLanguage returns the built-in layouts for a language plus, when a
// user is given, that user's custom layouts
func (r *LayoutRepository) ListByLanguage(language string, userID *int64) ([]models.Layout, error) {
	query := "SELECT " + layoutColumns + " FROM layouts WHERE language = ? AND is_custom = ?"
	args := []interface{}{language, false}
	if userID != nil {
		query = "SELECT " + layoutColumns + " FROM layouts WHERE language = ? AND (is_custom = ? OR created_by = ?)"
		args = append(args, *userID)
	}
	query += " ORDER BY is_custom ASC, name ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var layouts []models.Layout
	for rows.Next() {
		layout, err := scanLayout(rows)
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, *layout)
	}

	return layouts, rows.Err()
}

// Create inserts a custom layout
func (r *LayoutRepository) Create(layout *models.Layout) error {
	query := `
		INSERT INTO layouts (id, name, language, key_rows, is_custom, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		layout.ID, layout.Name, layout.Language, strings.Join(layout.Rows, "|"),
		layout.IsCustom, layout.CreatedBy, layout.CreatedAt, layout.UpdatedAt,
	)
	return err
}

// Update rewrites a custom layout's name and key rows
func (r *LayoutRepository) Update(layout *models.Layout) error {
	query := `
		UPDATE layouts
		SET name = ?, key_rows = ?, updated_at = ?
		WHERE id = ? AND is_custom = ?
	`
	_, err := r.db.Exec(query, layout.Name, strings.Join(layout.Rows, "|"), time.Now(), layout.ID, true)
	return err
}

// Delete removes a custom layout. Built-in layouts cannot be deleted.
func (r *LayoutRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM layouts WHERE id = ? AND is_custom = ?", id, true)
	return err
}

// GetPreference returns the user's preferred layout ID for a language, or
// empty when none is set
func (r *LayoutRepository) GetPreference(userID int64, language string) (string, error) {
	var layoutID string
	err := r.db.QueryRow(
		"SELECT layout_id FROM layout_preferences WHERE user_id = ? AND language = ?",
		userID, language,
	).Scan(&layoutID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return layoutID, nil
}

// SetPreference stores the user's preferred layout for a language.
// Update-then-insert keeps the upsert portable across dialects.
func (r *LayoutRepository) SetPreference(userID int64, language, layoutID string) error {
	result, err := r.db.Exec(
		"UPDATE layout_preferences SET layout_id = ?, updated_at = ? WHERE user_id = ? AND language = ?",
		layoutID, time.Now(), userID, language,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	_, err = r.db.Exec(
		"INSERT INTO layout_preferences (user_id, language, layout_id, updated_at) VALUES (?, ?, ?, ?)",
		userID, language, layoutID, time.Now(),
	)
	return err
}

func scanLayout(row rowScanner) (*models.Layout, error) {
	layout := &models.Layout{}
	var keyRows string
	var createdBy sql.NullInt64

	err := row.Scan(
		&layout.ID, &layout.Name, &layout.Language, &keyRows,
		&layout.IsCustom, &createdBy, &layout.CreatedAt, &layout.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if keyRows != "" {
		layout.Rows = strings.Split(keyRows, "|")
	}
	if createdBy.Valid {
		layout.CreatedBy = &createdBy.Int64
	}
	return layout, nil
}
