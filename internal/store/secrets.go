package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/darmiel/realmbroker/internal/core"
)

// clientSecretBytes is the entropy of generated client secrets.
const clientSecretBytes = 32

func GenerateRandomString(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashClientSecret hashes a plain client secret for storage.
func HashClientSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing client secret: %w", err)
	}
	return string(hash), nil
}

// MatchesClientSecret reports whether secret matches the main or the
// secondary secret of the record.
func MatchesClientSecret(secrets *core.PrincipalSecrets, secret string) bool {
	if secrets == nil || secret == "" {
		return false
	}
	for _, hash := range []string{secrets.MainSecretHash, secrets.SecondarySecretHash} {
		if hash == "" {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil {
			return true
		}
	}
	return false
}

// newClientSecret returns the given secret, or a generated one if it is empty.
func newClientSecret(secret string) (string, error) {
	if secret != "" {
		return secret, nil
	}
	s, err := GenerateRandomString(clientSecretBytes)
	if err != nil {
		return "", fmt.Errorf("generating client secret: %w", err)
	}
	return s, nil
}
