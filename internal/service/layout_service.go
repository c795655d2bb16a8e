package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"typier/internal/models"
	"typier/internal/repository"
	"typier/internal/validation"
)

var (
	ErrLayoutTaken     = errors.New("layout id already taken")
	ErrLayoutProtected = errors.New("built-in layouts cannot be modified")
	ErrNotLayoutOwner  = errors.New("layout belongs to another user")
)

// languageAlphabets lists the letters a layout must cover per language
var languageAlphabets = map[string]string{
	"english": "abcdefghijklmnopqrstuvwxyz",
	"spanish": "abcdefghijklmnñopqrstuvwxyz",
}

// SupportedLanguages returns the languages with a known alphabet
func SupportedLanguages() []string {
	return []string{"english", "spanish"}
}

// LayoutService manages the keyboard layout registry: built-in layouts
// seeded by migrations, user-created custom layouts, and per-user
// per-language preferences.
type LayoutService struct {
	layoutRepo *repository.LayoutRepository
}

// NewLayoutService creates a new layout service
func NewLayoutService(layoutRepo *repository.LayoutRepository) *LayoutService {
	return &LayoutService{layoutRepo: layoutRepo}
}

// GetLayout returns a layout by ID
func (s *LayoutService) GetLayout(id string) (*models.Layout, error) {
	layout, err := s.layoutRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}
	if layout == nil {
		return nil, ErrLayoutNotFound
	}
	return layout, nil
}

// ListLayouts returns the built-in layouts for a language plus the user's
// custom ones
func (s *LayoutService) ListLayouts(language string, userID *int64) ([]models.Layout, error) {
	if err := validation.ValidateLanguage(language, SupportedLanguages()); err != nil {
		return nil, err
	}
	return s.layoutRepo.ListByLanguage(language, userID)
}

// CreateCustomLayout validates and stores a user-defined layout
func (s *LayoutService) CreateCustomLayout(userID int64, id, name, language string, rows []string) (*models.Layout, error) {
	if err := validation.ValidateSlug("layout", id); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validateKeyRows(language, rows); err != nil {
		return nil, err
	}

	existing, err := s.layoutRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to check layout id: %w", err)
	}
	if existing != nil {
		return nil, ErrLayoutTaken
	}

	now := time.Now()
	layout := &models.Layout{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Language:  language,
		Rows:      rows,
		IsCustom:  true,
		CreatedBy: &userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.layoutRepo.Create(layout); err != nil {
		return nil, fmt.Errorf("failed to create layout: %w", err)
	}
	return layout, nil
}

// UpdateCustomLayout rewrites a custom layout's name and key rows. Only the
// owner may update it.
func (s *LayoutService) UpdateCustomLayout(userID int64, id, name string, rows []string) (*models.Layout, error) {
	layout, err := s.GetLayout(id)
	if err != nil {
		return nil, err
	}
	if !layout.IsCustom {
		return nil, ErrLayoutProtected
	}
	if layout.CreatedBy == nil || *layout.CreatedBy != userID {
		return nil, ErrNotLayoutOwner
	}

	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validateKeyRows(layout.Language, rows); err != nil {
		return nil, err
	}

	layout.Name = strings.TrimSpace(name)
	layout.Rows = rows
	if err := s.layoutRepo.Update(layout); err != nil {
		return nil, fmt.Errorf("failed to update layout: %w", err)
	}
	return layout, nil
}

// DeleteCustomLayout removes a custom layout owned by the user
func (s *LayoutService) DeleteCustomLayout(userID int64, id string) error {
	layout, err := s.GetLayout(id)
	if err != nil {
		return err
	}
	if !layout.IsCustom {
		return ErrLayoutProtected
	}
	if layout.CreatedBy == nil || *layout.CreatedBy != userID {
		return ErrNotLayoutOwner
	}
	return s.layoutRepo.Delete(id)
}

// GetPreference returns the user's preferred layout for a language, falling
// back to the language default when none is stored
func (s *LayoutService) GetPreference(userID int64, language string) (*models.Layout, error) {
	if err := validation.ValidateLanguage(language, SupportedLanguages()); err != nil {
		return nil, err
	}

	layoutID, err := s.layoutRepo.GetPreference(userID, language)
	if err != nil {
		return nil, fmt.Errorf("failed to load preference: %w", err)
	}
	if layoutID != "" {
		layout, err := s.layoutRepo.FindByID(layoutID)
		if err != nil {
			return nil, fmt.Errorf("failed to load layout: %w", err)
		}
		if layout != nil {
			return layout, nil
		}
		// Preference points at a deleted layout; fall through to default.
	}

	layouts, err := s.layoutRepo.ListByLanguage(language, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list layouts: %w", err)
	}
	if len(layouts) == 0 {
		return nil, ErrLayoutNotFound
	}
	return &layouts[0], nil
}

// SetPreference stores the user's preferred layout for a language. The
// layout must exist and match the language.
func (s *LayoutService) SetPreference(userID int64, language, layoutID string) error {
	layout, err := s.GetLayout(layoutID)
	if err != nil {
		return err
	}
	if layout.Language != language {
		return &validation.ValidationError{
			Field:   "layout",
			Message: fmt.Sprintf("layout %s is for %s, not %s", layoutID, layout.Language, language),
		}
	}
	return s.layoutRepo.SetPreference(userID, language, layoutID)
}

// validateKeyRows checks that the rows jointly cover the language's
// alphabet, so every generated text can be typed on the layout
func validateKeyRows(language string, rows []string) error {
	alphabet, ok := languageAlphabets[language]
	if !ok {
		return &validation.ValidationError{Field: "language", Message: fmt.Sprintf("unsupported language %q", language)}
	}
	if len(rows) == 0 {
		return &validation.ValidationError{Field: "rows", Message: "at least one key row is required"}
	}

	covered := make(map[rune]bool)
	for _, row := range rows {
		for _, r := range row {
			covered[unicode.ToLower(r)] = true
		}
	}

	var missing []string
	for _, r := range alphabet {
		if !covered[r] {
			missing = append(missing, string(r))
		}
	}
	if len(missing) > 0 {
		return &validation.ValidationError{
			Field:   "rows",
			Message: "missing keys: " + strings.Join(missing, ", "),
		}
	}
	return nil
}
