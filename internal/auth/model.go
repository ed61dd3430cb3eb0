package auth

import (
	"fmt"
	"strings"

	appErrors "github.com/fatali-fataliyev/mood_ledger/errors"
)

const (
	MIN_PASSCODE_LENGTH = 4
	MAX_PASSCODE_LENGTH = 72
)

// ValidatePasscode checks a plain passcode before hashing.
func ValidatePasscode(passcode string) error {
	if strings.TrimSpace(passcode) == "" {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: "Passcode cannot be empty!",
		}
	}
	if len(passcode) < MIN_PASSCODE_LENGTH {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: fmt.Sprintf("Passcode is too short, minimum length is %d", MIN_PASSCODE_LENGTH),
		}
	}
	if len(passcode) > MAX_PASSCODE_LENGTH {
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInvalidInput,
			Message: fmt.Sprintf("Passcode so long, maximum length is %d", MAX_PASSCODE_LENGTH),
		}
	}
	return nil
}

// PasscodeFromHeader extracts the passcode from an Authorization header
// value of the form "Passcode <value>" or "Bearer <value>".
func PasscodeFromHeader(header string) (string, bool) {
	scheme, value, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "passcode", "bearer":
		value = strings.TrimSpace(value)
		return value, value != ""
	}
	return "", false
}
