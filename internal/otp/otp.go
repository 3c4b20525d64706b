package otp

import (
	"crypto/rand"
	"fmt"
	"time"
)

const (
	// CodeLength at 6 over a 36-character alphabet gives ~2.2e9 possible
	// codes; lookups only ever race against live, unexpired tokens and the
	// validating endpoints sit behind per-IP rate limits.
	CodeLength = 6
	charset    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Window is how long an issued code stays valid.
	Window = 15 * time.Minute
)

// GenerateCode returns a random reset code. The caller enforces global
// uniqueness against live tokens at store time and retries on collision.
func GenerateCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = charset[int(b)%len(charset)]
	}
	return string(buf), nil
}
