package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

func HashPasscode(passcode string) (string, error) {
	if err := ValidatePasscode(passcode); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash plain passcode: %w", err)
	}
	return string(hashed), nil
}

func ComparePasscode(hashedPasscode string, plainPasscode string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPasscode), []byte(plainPasscode))
	return err == nil
}
