package chat

import (
	"fmt"
	"strings"
)

// RoomKeySeparator joins the two participant ids of a room key. Profile ids may not contain it.
const RoomKeySeparator = "_"

// RoomKey is the canonical, order-independent name of a two-party conversation room.
type RoomKey string

// NewRoomKey sorts the two ids and joins them, so both participants derive the same key.
func NewRoomKey(a, b string) (RoomKey, error) {
	if err := validParticipantID(a); err != nil {
		return "", err
	}
	if err := validParticipantID(b); err != nil {
		return "", err
	}
	if a == b {
		return "", fmt.Errorf("%w: self-conversation %q", ErrInvalidRoomKey, a)
	}
	if b < a {
		a, b = b, a
	}
	return RoomKey(a + RoomKeySeparator + b), nil
}

// ParseRoomKey decomposes s into exactly two distinct ids and returns the canonical key for them.
// Keys written in the wrong order are normalized.
func ParseRoomKey(s string) (RoomKey, error) {
	parts := strings.Split(strings.TrimSpace(s), RoomKeySeparator)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidRoomKey, s)
	}
	return NewRoomKey(parts[0], parts[1])
}

// Participants returns the two encoded ids in sorted order.
func (k RoomKey) Participants() (string, string) {
	a, b, _ := strings.Cut(string(k), RoomKeySeparator)
	return a, b
}

// Has reports whether id is one of the two encoded participants.
func (k RoomKey) Has(id string) bool {
	a, b := k.Participants()
	return id != "" && (id == a || id == b)
}

// Partner returns the participant that is not self.
func (k RoomKey) Partner(self string) (string, error) {
	a, b := k.Participants()
	switch self {
	case a:
		return b, nil
	case b:
		return a, nil
	}
	return "", ErrNotParticipant
}

func (k RoomKey) String() string { return string(k) }

func validParticipantID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty participant id", ErrInvalidRoomKey)
	}
	if strings.Contains(id, RoomKeySeparator) {
		return fmt.Errorf("%w: participant id %q contains %q", ErrInvalidRoomKey, id, RoomKeySeparator)
	}
	return nil
}
