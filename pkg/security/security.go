package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GeneratePassword returns a random lowercase-alphanumeric credential.
// Student passwords are handed out on paper, so they stay short and typable.
func GeneratePassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}

	b := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		b[i] = passwordAlphabet[n.Int64()]
	}

	return string(b), nil
}

// GenerateLogin derives a login from a display name: lowercased, every
// non-alphanumeric run collapsed into a single underscore. Returns "user"
// for names with no usable characters; the caller de-duplicates.
func GenerateLogin(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteRune('_')
			lastUnderscore = true
		}
	}

	login := strings.Trim(b.String(), "_")
	if login == "" {
		return "user"
	}

	return login
}

// SanitizeText trims the value and drops control characters. Length bounds
// are enforced by request validation, injection by parameterized queries.
func SanitizeText(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
