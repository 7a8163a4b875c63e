package sessionid

import (
	"crypto/rand"
	"errors"
	"fmt"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// DefaultLength is the id length used by sessions unless configured otherwise.
const DefaultLength = 40

// randRead is swapped in tests to simulate a failing random source.
var randRead = rand.Read

// Generate returns a random identifier of exactly length characters.
func Generate(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("%w: got %d, want >= 1", ErrInvalidLength, length)
	}

	b := make([]byte, length)
	if _, err := randRead(b); err != nil {
		return "", errors.Join(ErrRandomSource, err)
	}

	pos := 0
	out := make([]byte, length)
	for i, c := range b {
		pos = (pos + int(c)) % len(alphabet)
		out[i] = alphabet[pos]
	}

	return string(out), nil
}

// IsValid reports whether id matches ^[A-Za-z0-9_-]+$.
func IsValid(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		if !isNameByte(id[i]) && id[i] != '-' {
			return false
		}
	}
	return true
}

// IsValidName reports whether name matches ^[A-Za-z0-9_]+$.
// Session names double as cookie names and storage prefixes.
func IsValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isNameByte(name[i]) {
			return false
		}
	}
	return true
}

func isNameByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		return true
	}
	return false
}
