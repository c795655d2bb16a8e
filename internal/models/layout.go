package models

import "time"

// Layout represents a keyboard layout available for typing sessions.
// Built-in layouts are seeded by migrations; custom layouts belong to the
// user that created them.
type Layout struct {
	ID        string // slug, e.g. "qwerty" or "custom-<uuid>"
	Name      string
	Language  string
	Rows      []string // key rows, top to bottom, e.g. "qwertyuiop"
	IsCustom  bool
	CreatedBy *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LayoutPreference records a user's preferred layout for a language
type LayoutPreference struct {
	UserID    int64
	Language  string
	LayoutID  string
	UpdatedAt time.Time
}
