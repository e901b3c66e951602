package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// MinHashSaltLength is the shortest LOG_HASH_SALT accepted by InitHashSalt.
const MinHashSaltLength = 32

var hashSalt string

// InitHashSalt loads LOG_HASH_SALT. It panics when the salt is missing or
// shorter than MinHashSaltLength, so a misconfigured deploy fails at boot.
func InitHashSalt() {
	salt := os.Getenv("LOG_HASH_SALT")
	if len(salt) < MinHashSaltLength {
		panic(fmt.Sprintf("LOG_HASH_SALT must be set to at least %d characters", MinHashSaltLength))
	}
	hashSalt = salt
}

// InitHashSaltForTesting sets the salt directly.
func InitHashSaltForTesting(salt string) {
	hashSalt = salt
}

func hash(kind string, id any) string {
	data := fmt.Sprintf("%s:%v:%s", kind, id, hashSalt)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])[:8]
}

// HashUserID creates a privacy-preserving hash of a Telegram user ID.
// This allows tracking user actions without exposing actual user IDs.
func HashUserID(userID int64) string {
	return hash("user", userID)
}

// SanitizeEmail keeps the domain and the first letter of the local part.
func SanitizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "<empty>"
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "<invalid email>"
	}
	first, _ := utf8.DecodeRuneInString(local)
	return fmt.Sprintf("%c***@%s", first, domain)
}

// SanitizePhone shows only the last two digits.
func SanitizePhone(phone string) string {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 2 {
		return "<empty>"
	}
	return "***" + string(digits[len(digits)-2:])
}

// SanitizeMessage redacts an inquiry message but keeps its size.
func SanitizeMessage(msg string) string {
	if msg == "" {
		return "<empty>"
	}
	return fmt.Sprintf("<redacted: %d words, %d chars>", len(strings.Fields(msg)), utf8.RuneCountInString(msg))
}
