package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	chat "github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/chat/persistence/repository/port"
)

// MemoryChatRepository keeps conversations and both logs in process. Used by tests and
// single-node runs without DB_URL.
type MemoryChatRepository struct {
	mu            sync.Mutex
	conversations map[chat.RoomKey]*chat.Conversation
	messages      map[chat.RoomKey][]chat.Message
	legacy        []chat.LegacyMessage
	legacySeq     int64
	fail          error
	now           func() time.Time
}

func NewMemoryChatRepository() *MemoryChatRepository {
	return &MemoryChatRepository{
		conversations: make(map[chat.RoomKey]*chat.Conversation),
		messages:      make(map[chat.RoomKey][]chat.Message),
		now:           time.Now,
	}
}

var (
	_ repository.ChatRepository          = (*MemoryChatRepository)(nil)
	_ repository.LegacyMessageRepository = (*MemoryChatRepository)(nil)
)

// SetClock replaces the time source.
func (r *MemoryChatRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

// FailWith makes every subsequent call return err until it is called again with nil.
func (r *MemoryChatRepository) FailWith(err error) {
	r.mu.Lock()
	r.fail = err
	r.mu.Unlock()
}

// AddLegacy appends rows to the composite-key log, assigning insertion order.
func (r *MemoryChatRepository) AddLegacy(msgs ...chat.LegacyMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.legacySeq++
		m.Seq = r.legacySeq
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		r.legacy = append(r.legacy, m)
	}
}

func (r *MemoryChatRepository) EnsureConversation(_ context.Context, c chat.Conversation) (chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return chat.Conversation{}, r.fail
	}
	return *r.ensure(c), nil
}

func (r *MemoryChatRepository) AppendMessage(_ context.Context, c chat.Conversation, m chat.Message) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return chat.Message{}, r.fail
	}
	conv := r.ensure(c)
	stored := conv.Append(m, r.now())
	r.messages[conv.RoomKey] = append(r.messages[conv.RoomKey], stored)
	return stored, nil
}

func (r *MemoryChatRepository) FindConversationByRoomKey(_ context.Context, key chat.RoomKey) (chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return chat.Conversation{}, r.fail
	}
	c, ok := r.conversations[key]
	if !ok {
		return chat.Conversation{}, chat.ErrNotFound
	}
	return *c, nil
}

func (r *MemoryChatRepository) GetMessagesByConversation(_ context.Context, key chat.RoomKey, limit int, offset int) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	all := r.messages[key]
	end := len(all) - offset
	if end <= 0 {
		return []chat.Message{}, nil
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	return append([]chat.Message(nil), all[start:end]...), nil
}

func (r *MemoryChatRepository) ListConversationsForProfile(_ context.Context, profileID string) ([]chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	var out []chat.Conversation
	for key, c := range r.conversations {
		if key.Has(profileID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastMessageAt, out[j].LastMessageAt
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a == nil && b != nil:
			return false
		case a != nil && b == nil:
			return true
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryChatRepository) ListLegacyMessagesForProfile(_ context.Context, profileID string) ([]chat.LegacyMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	return append([]chat.LegacyMessage(nil), r.legacy...), nil
}

func (r *MemoryChatRepository) ensure(c chat.Conversation) *chat.Conversation {
	if existing, ok := r.conversations[c.RoomKey]; ok {
		return existing
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.now().UTC()
	}
	r.conversations[c.RoomKey] = &c
	return &c
}
