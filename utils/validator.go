// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRegex      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	rollNumberRegex = regexp.MustCompile(`^\d{9}$`)
)

const passwordSpecials = "!@#$%&*()-+=^"

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePassword checks password strength and returns the first failed rule.
func ValidatePassword(password string) (bool, string) {
	if password == "" {
		return false, "Password is required."
	}
	if n := len([]rune(password)); n < 8 || n > 15 {
		return false, "Password must be between 8 and 15 characters long."
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return false, "Password must not contain whitespace."
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return false, "Password must contain at least one uppercase letter."
	case !hasLower:
		return false, "Password must contain at least one lowercase letter."
	case !hasDigit:
		return false, "Password must contain at least one digit."
	case !hasSpecial:
		return false, "Password must contain at least one special character (" + passwordSpecials + ")."
	}
	return true, ""
}

// ValidateRollNumber checks the 9-digit university roll number format.
func ValidateRollNumber(roll string) bool {
	return rollNumberRegex.MatchString(roll)
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	return strings.ReplaceAll(input, "\x00", "")
}
