package hiring

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// TokenSource produces video invitation tokens.
type TokenSource interface {
	NewToken() (string, error)
}

// RandomTokens draws 32 bytes from crypto/rand and hex-encodes them.
type RandomTokens struct{}

// NewToken returns a 64-character hex token.
func (RandomTokens) NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate video token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// TokenMatches compares a presented token with the stored one in constant time.
func TokenMatches(stored *string, presented string) bool {
	if stored == nil || *stored == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(presented)) == 1
}
