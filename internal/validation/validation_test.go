package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "user@example.com", false},
		{"valid with plus", "user+tag@example.com", false},
		{"valid subdomain", "user@mail.example.co.uk", false},
		{"empty", "", true},
		{"missing at", "userexample.com", true},
		{"missing domain", "user@", true},
		{"missing tld", "user@example", true},
		{"spaces inside", "us er@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "longenough", false},
		{"exactly 8", "12345678", false},
		{"too short", "short", true},
		{"empty", "", true},
		{"too long", string(make([]byte, 73)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName("Ada Lovelace"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
	if err := ValidateName("   "); err == nil {
		t.Error("blank name accepted")
	}
}

func TestValidateLanguage(t *testing.T) {
	supported := []string{"english", "spanish"}

	if err := ValidateLanguage("english", supported); err != nil {
		t.Errorf("supported language rejected: %v", err)
	}
	if err := ValidateLanguage("klingon", supported); err == nil {
		t.Error("unsupported language accepted")
	}
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"qwerty", false},
		{"qwerty-es", false},
		{"my-layout-2", false},
		{"", true},
		{"UPPER", true},
		{"has space", true},
		{"-leading", true},
		{"trailing-", true},
	}

	for _, tt := range tests {
		err := ValidateSlug("layout", tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSlug(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "email", Message: "email is required"}
	if got := err.Error(); got != "email: email is required" {
		t.Errorf("Error() = %q", got)
	}
}
