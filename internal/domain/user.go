// Package domain holds the value types and errors shared by every layer.
package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MinUsernameLen = 2
	MaxUsernameLen = 30
	guestPrefix    = "guest-"
)

// ConnID identifies one physical client channel for as long as it is open.
type ConnID string

func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

// GuestName is the anonymized placeholder given to connections without a name.
func GuestName(id ConnID) string {
	s := strings.ReplaceAll(string(id), "-", "")
	if len(s) > 6 {
		s = s[:6]
	}
	return guestPrefix + s
}

// NormalizeDisplayName trims the client supplied name and falls back to a
// guest name when nothing is left. Names outside [minLen, maxLen] runes are
// rejected; a zero bound falls back to the package default.
func NormalizeDisplayName(id ConnID, name string, minLen, maxLen int) (string, error) {
	if minLen <= 0 {
		minLen = MinUsernameLen
	}
	if maxLen <= 0 {
		maxLen = MaxUsernameLen
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return GuestName(id), nil
	}
	switch n := utf8.RuneCountInString(name); {
	case n < minLen:
		return "", fmt.Errorf("display name shorter than %d characters: %w", minLen, ErrMalformedEvent)
	case n > maxLen:
		return "", fmt.Errorf("display name longer than %d characters: %w", maxLen, ErrMalformedEvent)
	}
	return name, nil
}
