package chat

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxMessageRunes caps the text of a single message.
const MaxMessageRunes = 4000

// Message is an immutable log entry in a conversation
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	RoomKey        RoomKey   `json:"room_key"`
	SenderID       string    `json:"sender_id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewMessage validates a send request and returns a message with a fresh id.
// ConversationID and CreatedAt are assigned by the log when it is appended.
func NewMessage(key RoomKey, senderID, text string) (Message, error) {
	if !key.Has(senderID) {
		return Message{}, ErrNotParticipant
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	if n := utf8.RuneCountInString(text); n > MaxMessageRunes {
		return Message{}, fmt.Errorf("%w: %d > %d characters", ErrMessageTooLong, n, MaxMessageRunes)
	}
	return Message{
		ID:       uuid.NewString(),
		RoomKey:  key,
		SenderID: senderID,
		Text:     text,
	}, nil
}
