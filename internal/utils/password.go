package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to every staff account.
const MinPasswordLength = 8

// PasswordCost is the bcrypt cost of new hashes. Tests lower it.
var PasswordCost = bcrypt.DefaultCost

// HashPassword hashes a staff password with bcrypt. Passwords shorter than
// MinPasswordLength or longer than bcrypt's 72-byte input are refused.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether password matches hash. An empty hash never matches.
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
