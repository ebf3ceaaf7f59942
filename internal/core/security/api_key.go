package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateAPIKey creates a new key and its hash.
// Returns: (realKey, hash)
// The real key is shown to the user once; only the hash touches the database.
func GenerateAPIKey() (string, string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	// Stripe-style prefix so keys are recognizable in logs and configs.
	realKey := fmt.Sprintf("sk_live_%s", hex.EncodeToString(bytes))

	hash := sha256.Sum256([]byte(realKey))
	keyHash := hex.EncodeToString(hash[:])

	return realKey, keyHash, nil
}

// HashKey hashes a provided key the same way GenerateAPIKey does.
func HashKey(providedKey string) string {
	hash := sha256.Sum256([]byte(providedKey))
	return hex.EncodeToString(hash[:])
}

// ValidateKey checks if the user provided key matches the hash
func ValidateKey(providedKey, storedHash string) bool {
	computed := HashKey(providedKey)
	return hmac.Equal([]byte(computed), []byte(storedHash))
}
