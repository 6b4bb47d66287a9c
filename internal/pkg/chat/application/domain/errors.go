package chat

import "errors"

// Domain-level errors for chat behaviors
var (
	ErrInvalidRoomKey = errors.New("chat: invalid room key")
	ErrNotParticipant = errors.New("chat: sender is not a participant in the conversation")
	ErrEmptyMessage   = errors.New("chat: empty message")
	ErrMessageTooLong = errors.New("chat: message too long")
	ErrNotFound       = errors.New("chat: conversation not found")
)
