package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// VerificationTokenTTL bounds email verification links.
	VerificationTokenTTL = 24 * time.Hour
	// ResetTokenTTL bounds password reset links.
	ResetTokenTTL = time.Hour

	oneTimeTokenBytes = 32
)

// OneTimeToken is a random token mailed to the user. Only Hash is persisted.
type OneTimeToken struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

// NewOneTimeToken generates a token valid for ttl from now.
func NewOneTimeToken(now time.Time, ttl time.Duration) (OneTimeToken, error) {
	plain, err := randomHex(oneTimeTokenBytes)
	if err != nil {
		return OneTimeToken{}, err
	}
	return OneTimeToken{
		Plain:     plain,
		Hash:      HashToken(plain),
		ExpiresAt: now.Add(ttl),
	}, nil
}

// HashToken returns the hex SHA-256 digest stored for a one-time token.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
