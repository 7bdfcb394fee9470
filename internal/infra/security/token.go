package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GeneratedPasswordLength is the length of passwords issued at registration
// and on admin-forced resets.
const GeneratedPasswordLength = 8

// GeneratedPasswordCharset is the alphabet generated passwords draw from.
const GeneratedPasswordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()"

// GeneratePassword returns a random password of GeneratedPasswordLength
// characters drawn from GeneratedPasswordCharset.
func GeneratePassword() (string, error) {
	buf := make([]byte, GeneratedPasswordLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}

	out := make([]byte, GeneratedPasswordLength)
	for i, b := range buf {
		out[i] = GeneratedPasswordCharset[int(b)%len(GeneratedPasswordCharset)]
	}

	return string(out), nil
}

// GenerateResetToken returns a hex-encoded random string using the specified
// number of random bytes. Reset links embed the raw value; only its hash is
// persisted.
func GenerateResetToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// HashToken calculates a SHA-256 hash of the provided value.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
