package chat

import (
	"time"

	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// Conversation is the canonical record of a two-party thread, unique per room key.
type Conversation struct {
	ID            string         `json:"id"`
	RoomKey       RoomKey        `json:"room_key"`
	Participants  [2]profile.Ref `json:"participants"`
	LastMessage   *string        `json:"last_message,omitempty"`
	LastSenderID  *string        `json:"last_sender_id,omitempty"`
	LastMessageAt *time.Time     `json:"last_message_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Partner returns the participant reference that is not self.
func (c Conversation) Partner(self string) (profile.Ref, bool) {
	switch self {
	case c.Participants[0].ID:
		return c.Participants[1], true
	case c.Participants[1].ID:
		return c.Participants[0], true
	}
	return profile.Ref{}, false
}

// Append stamps m for this conversation and advances the summary.
// CreatedAt never moves backwards, so the log stays ordered even if the clock does.
func (c *Conversation) Append(m Message, now time.Time) Message {
	ts := now.UTC()
	if c.LastMessageAt != nil && ts.Before(*c.LastMessageAt) {
		ts = *c.LastMessageAt
	}
	m.ConversationID = c.ID
	m.RoomKey = c.RoomKey
	m.CreatedAt = ts

	text, sender := m.Text, m.SenderID
	c.LastMessage = &text
	c.LastSenderID = &sender
	c.LastMessageAt = &ts
	return m
}

// OrderParticipants orders two refs to match the sorted ids of a room key.
func OrderParticipants(a, b profile.Ref) [2]profile.Ref {
	if b.ID < a.ID {
		return [2]profile.Ref{b, a}
	}
	return [2]profile.Ref{a, b}
}
