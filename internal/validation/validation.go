package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError describes a rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks that an email address is well-formed
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if len(email) > 254 {
		return &ValidationError{Field: "email", Message: "email is too long"}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Message: "email is not valid"}
	}
	return nil
}

// ValidatePassword enforces the minimum password requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	if len(password) > 72 {
		// bcrypt truncates beyond 72 bytes
		return &ValidationError{Field: "password", Message: "password must be at most 72 characters"}
	}
	return nil
}

// ValidateName checks a display name
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) > 100 {
		return &ValidationError{Field: "name", Message: "name is too long"}
	}
	return nil
}

// ValidateLanguage checks a language code against the supported set
func ValidateLanguage(language string, supported []string) error {
	for _, s := range supported {
		if language == s {
			return nil
		}
	}
	return &ValidationError{Field: "language", Message: fmt.Sprintf("unsupported language %q", language)}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateSlug checks an identifier used in URLs, such as a layout ID
func ValidateSlug(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Message: field + " is required"}
	}
	if len(value) > 64 {
		return &ValidationError{Field: field, Message: field + " is too long"}
	}
	if !slugPattern.MatchString(value) {
		return &ValidationError{Field: field, Message: field + " must be lowercase letters, digits and hyphens"}
	}
	return nil
}
