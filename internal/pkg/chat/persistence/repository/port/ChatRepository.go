package repository

import (
	"context"

	chat "github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/domain"
)

// ChatRepository defines persistence operations for the canonical conversation model.
// Lookups by room key return chat.ErrNotFound when no conversation exists.
type ChatRepository interface {
	// EnsureConversation returns the conversation for c.RoomKey, inserting c when none exists.
	EnsureConversation(ctx context.Context, c chat.Conversation) (chat.Conversation, error)
	// AppendMessage durably writes m into the conversation for c.RoomKey, creating it if needed,
	// and returns m as stored. Writes to one room are serialized and never go back in time.
	AppendMessage(ctx context.Context, c chat.Conversation, m chat.Message) (chat.Message, error)
	FindConversationByRoomKey(ctx context.Context, key chat.RoomKey) (chat.Conversation, error)
	// GetMessagesByConversation returns the newest page of a room in chronological order.
	GetMessagesByConversation(ctx context.Context, key chat.RoomKey, limit int, offset int) ([]chat.Message, error)
	ListConversationsForProfile(ctx context.Context, profileID string) ([]chat.Conversation, error)
}

// LegacyMessageRepository reads the flat composite-key log kept for compatibility.
type LegacyMessageRepository interface {
	ListLegacyMessagesForProfile(ctx context.Context, profileID string) ([]chat.LegacyMessage, error)
}
