package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"vault/internal/config"
	"vault/internal/domain/services"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCredentialStore hashes passwords with bcrypt.
//
// bcrypt ignores input past 72 bytes, and a 100 character password can exceed that
// once multi-byte runes are involved, so the password is first reduced to a
// base64-encoded SHA-256 digest (44 bytes) and that digest is what bcrypt sees.
type BcryptCredentialStore struct {
	cost int
}

var _ services.CredentialStore = (*BcryptCredentialStore)(nil)

// NewBcryptCredentialStore creates a store with the given cost.
// Costs outside bcrypt's range fall back to config.DefaultBcryptCost.
func NewBcryptCredentialStore(cost int) *BcryptCredentialStore {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = config.DefaultBcryptCost
	}
	return &BcryptCredentialStore{cost: cost}
}

// Hash returns a bcrypt hash embedding salt and cost
func (s *BcryptCredentialStore) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(plaintext), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes never match.
func (s *BcryptCredentialStore) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(plaintext)) == nil
}

func prehash(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
