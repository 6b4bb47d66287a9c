package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/kanaksh-py/startup-backend/internal/pkg/chat/application/domain"
	repository "github.com/kanaksh-py/startup-backend/internal/pkg/chat/persistence/repository/port"
	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

const defaultPageSize = 50

var errNilPool = errors.New("PgChatRepository: nil pool")

type PgChatRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool, now: time.Now}
}

var (
	_ repository.ChatRepository          = (*PgChatRepository)(nil)
	_ repository.LegacyMessageRepository = (*PgChatRepository)(nil)
)

const conversationColumns = `id::text, room_key, participant_a_kind, participant_a_id, participant_b_kind, participant_b_id,
	last_message, last_sender_id, last_message_at, created_at`

// upsertConversation inserts or touches the row for c.RoomKey. DO UPDATE takes the row lock,
// so concurrent appends to the same room queue behind each other until commit.
const upsertConversation = `
	INSERT INTO chat.conversation (id, room_key, participant_a_kind, participant_a_id, participant_b_kind, participant_b_id, created_at)
	VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (room_key) DO UPDATE SET room_key = EXCLUDED.room_key
	RETURNING ` + conversationColumns

func (r *PgChatRepository) EnsureConversation(ctx context.Context, c chat.Conversation) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errNilPool
	}
	return scanConversation(r.pool.QueryRow(ctx, upsertConversation, upsertArgs(c, r.now())...))
}

func (r *PgChatRepository) AppendMessage(ctx context.Context, c chat.Conversation, m chat.Message) (chat.Message, error) {
	if r == nil || r.pool == nil {
		return chat.Message{}, errNilPool
	}
	var stored chat.Message
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		conv, err := scanConversation(tx.QueryRow(ctx, upsertConversation, upsertArgs(c, r.now())...))
		if err != nil {
			return err
		}
		stored = conv.Append(m, r.now())

		if _, err := tx.Exec(ctx, `
			INSERT INTO chat.message (id, conversation_id, sender_id, body, created_at)
			VALUES ($1::uuid, $2::uuid, $3, $4, $5)
		`, stored.ID, stored.ConversationID, stored.SenderID, stored.Text, stored.CreatedAt); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE chat.conversation
			SET last_message = $2, last_sender_id = $3, last_message_at = $4
			WHERE id = $1::uuid
		`, conv.ID, conv.LastMessage, conv.LastSenderID, conv.LastMessageAt)
		return err
	})
	if err != nil {
		return chat.Message{}, err
	}
	return stored, nil
}

func (r *PgChatRepository) FindConversationByRoomKey(ctx context.Context, key chat.RoomKey) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errNilPool
	}
	c, err := scanConversation(r.pool.QueryRow(ctx,
		"SELECT "+conversationColumns+" FROM chat.conversation WHERE room_key = $1", string(key)))
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Conversation{}, chat.ErrNotFound
	}
	return c, err
}

func (r *PgChatRepository) GetMessagesByConversation(ctx context.Context, key chat.RoomKey, limit int, offset int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, room_key, sender_id, body, created_at FROM (
			SELECT m.seq, m.id, m.conversation_id, c.room_key, m.sender_id, m.body, m.created_at
			FROM chat.message m
			JOIN chat.conversation c ON c.id = m.conversation_id
			WHERE c.room_key = $1
			ORDER BY m.created_at DESC, m.seq DESC
			LIMIT $2 OFFSET $3
		) page
		ORDER BY created_at, seq
	`, string(key), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]chat.Message, 0, limit)
	for rows.Next() {
		var (
			msg     chat.Message
			roomKey string
		)
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &roomKey, &msg.SenderID, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.RoomKey = chat.RoomKey(roomKey)
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

func (r *PgChatRepository) ListConversationsForProfile(ctx context.Context, profileID string) ([]chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+conversationColumns+`
		FROM chat.conversation
		WHERE participant_a_id = $1 OR participant_b_id = $1
		ORDER BY last_message_at DESC NULLS LAST, created_at DESC
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []chat.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return convs, nil
}

// ListLegacyMessagesForProfile narrows the flat log by exact key component. The domain aggregation
// re-validates every key, so malformed rows that slip through are still dropped there.
func (r *PgChatRepository) ListLegacyMessagesForProfile(ctx context.Context, profileID string) ([]chat.LegacyMessage, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	rows, err := r.pool.Query(ctx, `
		SELECT seq, id, conversation_id, sender_id, body, created_at
		FROM chat.legacy_message
		WHERE split_part(conversation_id, '_', 1) = $1 OR split_part(conversation_id, '_', 2) = $1
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.LegacyMessage
	for rows.Next() {
		var m chat.LegacyMessage
		if err := rows.Scan(&m.Seq, &m.ID, &m.ConversationID, &m.SenderID, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

func upsertArgs(c chat.Conversation, now time.Time) []any {
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	created := c.CreatedAt
	if created.IsZero() {
		created = now.UTC()
	}
	return []any{
		id, string(c.RoomKey),
		string(c.Participants[0].Kind), c.Participants[0].ID,
		string(c.Participants[1].Kind), c.Participants[1].ID,
		created,
	}
}

func scanConversation(row pgx.Row) (chat.Conversation, error) {
	var (
		c             chat.Conversation
		roomKey       string
		kindA, kindB  string
		lastMessageAt *time.Time
	)
	if err := row.Scan(
		&c.ID, &roomKey,
		&kindA, &c.Participants[0].ID,
		&kindB, &c.Participants[1].ID,
		&c.LastMessage, &c.LastSenderID, &lastMessageAt, &c.CreatedAt,
	); err != nil {
		return chat.Conversation{}, err
	}
	c.RoomKey = chat.RoomKey(roomKey)
	c.Participants[0].Kind = profile.Kind(kindA)
	c.Participants[1].Kind = profile.Kind(kindB)
	if lastMessageAt != nil {
		t := lastMessageAt.UTC()
		c.LastMessageAt = &t
	}
	return c, nil
}
