package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// MinHashSaltLength is the minimum accepted length for LOG_HASH_SALT.
const MinHashSaltLength = 32

var hashSalt string

// InitHashSalt loads the salt used by the hash helpers from LOG_HASH_SALT.
// It panics when the salt is missing or shorter than MinHashSaltLength.
func InitHashSalt() {
	salt := os.Getenv("LOG_HASH_SALT")
	if salt == "" {
		panic("LOG_HASH_SALT environment variable is required")
	}
	if len(salt) < MinHashSaltLength {
		panic(fmt.Sprintf("LOG_HASH_SALT must be at least %d characters", MinHashSaltLength))
	}
	hashSalt = salt
}

// InitHashSaltForTesting sets the salt directly.
func InitHashSaltForTesting(salt string) {
	hashSalt = salt
}

func hash(value string) string {
	sum := sha256.Sum256([]byte(value + ":" + hashSalt))
	return hex.EncodeToString(sum[:])[:8]
}

// HashEmail creates a privacy-preserving hash of an employee email.
// Emails are case-insensitive, so they are lowercased before hashing.
func HashEmail(email string) string {
	if email == "" {
		return "<anonymous>"
	}
	return hash(strings.ToLower(strings.TrimSpace(email)))
}

// HashChatID creates a privacy-preserving hash of a chat ID.
func HashChatID(chatID int64) string {
	return hash(fmt.Sprintf("%d", chatID))
}

// SanitizeText is a general-purpose sanitizer for any user-provided text.
func SanitizeText(text string) string {
	if text == "" {
		return "<empty>"
	}

	// For short text, show first few characters
	if len(text) <= 10 {
		return fmt.Sprintf("<%d chars>", len(text))
	}

	// For longer text, show prefix and length
	return fmt.Sprintf("%s...<%d chars>", text[:3], len(text))
}

// SanitizeFileName keeps the extension of an uploaded file name and redacts the rest.
func SanitizeFileName(name string) string {
	if name == "" {
		return "<empty>"
	}
	dot := strings.LastIndex(name, ".")
	if dot < 0 || dot == len(name)-1 {
		return fmt.Sprintf("<%d chars>", len(name))
	}
	return fmt.Sprintf("<%d chars>%s", dot, name[dot:])
}
