package domain

import (
	"fmt"
	"strings"
)

const (
	DefaultRoom  RoomID = "lobby"
	MaxRoomIDLen        = 36
)

type RoomID string

// NormalizeRoomID makes room keys case-insensitive. An empty id means the lobby.
func NormalizeRoomID(raw string) (RoomID, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return DefaultRoom, nil
	}
	if len(s) > MaxRoomIDLen {
		return "", fmt.Errorf("room id longer than %d characters: %w", MaxRoomIDLen, ErrMalformedEvent)
	}
	return RoomID(s), nil
}

// RoomInfo is a read-only view of a room for listings.
type RoomInfo struct {
	ID          RoomID `json:"id"`
	MemberCount int    `json:"users"`
}
