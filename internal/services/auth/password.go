// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"unicode"
	"unicode/utf8"
)

// PasswordValidator validates passwords against various criteria
type PasswordValidator struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireDigit     bool
	RejectNumeric    bool
}

// DefaultPasswordValidator returns the policy used at registration.
func DefaultPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		MinLength:        6,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireDigit:     true,
		RejectNumeric:    true,
	}
}

// PasswordRule is a single failed password rule. MessageID is its
// translation key.
type PasswordRule struct {
	Code      string
	MessageID string
}

// ValidationResult holds all validation errors
type ValidationResult struct {
	Valid  bool
	Errors []PasswordRule
}

// Validate checks a password against all configured rules.
func (v *PasswordValidator) Validate(password string) ValidationResult {
	var failed []PasswordRule

	if utf8.RuneCountInString(password) < v.MinLength {
		failed = append(failed, PasswordRule{Code: "min_length", MessageID: "PasswordMinLength"})
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if v.RequireUppercase && !hasUpper {
		failed = append(failed, PasswordRule{Code: "no_uppercase", MessageID: "PasswordUppercase"})
	}
	if v.RequireLowercase && !hasLower {
		failed = append(failed, PasswordRule{Code: "no_lowercase", MessageID: "PasswordLowercase"})
	}
	if v.RequireDigit && !hasDigit {
		failed = append(failed, PasswordRule{Code: "no_digit", MessageID: "PasswordDigit"})
	}
	if v.RejectNumeric && isEntirelyNumeric(password) {
		failed = append(failed, PasswordRule{Code: "entirely_numeric", MessageID: "PasswordNumeric"})
	}

	return ValidationResult{
		Valid:  len(failed) == 0,
		Errors: failed,
	}
}

// HelpMessageIDs returns the translation keys describing the policy.
func (v *PasswordValidator) HelpMessageIDs() []string {
	ids := []string{"PasswordMinLength"}
	if v.RequireUppercase {
		ids = append(ids, "PasswordUppercase")
	}
	if v.RequireLowercase {
		ids = append(ids, "PasswordLowercase")
	}
	if v.RequireDigit {
		ids = append(ids, "PasswordDigit")
	}
	return ids
}

func isEntirelyNumeric(password string) bool {
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(password) > 0
}
