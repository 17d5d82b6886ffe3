package services

import (
	"crypto/subtle"
	"fmt"

	"coachdesk/internal/config"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks and produces stored passwords.
type CredentialVerifier interface {
	Verify(stored, secret string) bool
	Hash(secret string) (string, error)
}

// PlainVerifier stores passwords as given.
type PlainVerifier struct{}

func (PlainVerifier) Verify(stored, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(secret)) == 1
}

func (PlainVerifier) Hash(secret string) (string, error) {
	return secret, nil
}

// BcryptVerifier stores bcrypt hashes.
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) Verify(stored, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret)) == nil
}

func (v BcryptVerifier) Hash(secret string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// NewCredentialVerifier returns the verifier for a password scheme.
func NewCredentialVerifier(scheme string) (CredentialVerifier, error) {
	switch scheme {
	case config.PasswordSchemePlain, "":
		return PlainVerifier{}, nil
	case config.PasswordSchemeBcrypt:
		return BcryptVerifier{}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}
