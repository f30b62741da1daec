package service

import (
	"fmt"
	"unicode/utf8"

	"academic-records/internal/domain/user"
	"academic-records/pkg/apperror"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is lowered by tests.
var hashCost = bcrypt.DefaultCost

func checkPassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < user.MinPassword || n > user.MaxPassword || len(password) > 72 {
		return fmt.Errorf("%w: password must be %d to %d characters", apperror.ErrValidationFailed, user.MinPassword, user.MaxPassword)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if err := checkPassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
