package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// GenerateHash hashes a secret with bcrypt for storage at rest.
func GenerateHash(secret []byte) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(secret, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CompareHash reports whether secret matches the stored bcrypt hash.
func CompareHash(hash, secret []byte) bool {
	if err := bcrypt.CompareHashAndPassword(hash, secret); err != nil {
		return false
	}
	return true
}
