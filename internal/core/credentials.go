package core

import "strings"

// ValidatePassword checks a new password and its confirmation.
func ValidatePassword(password, confirm string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// ValidateNewAccount checks sign-up input before an account is created.
func ValidateNewAccount(username, password, confirm string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	return ValidatePassword(password, confirm)
}
