package chat

import (
	"sort"
	"time"

	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

// LegacyMessage is a row of the flat message log keyed by a composite room key string.
// Seq is the insertion order at the log.
type LegacyMessage struct {
	Seq            int64
	ID             string
	ConversationID string
	SenderID       string
	Text           string
	CreatedAt      time.Time
}

// RecentConversation is one entry of a profile's recent-conversations view before partner resolution.
// ConversationID is the canonical id when the pair has a Conversation, the room key otherwise.
// PartnerKind is empty when only the composite log knows the pair.
type RecentConversation struct {
	ConversationID string
	RoomKey        RoomKey
	PartnerID      string
	PartnerKind    profile.Kind
	LastMessage    string
	LastSenderID   string
	LastTimestamp  time.Time
}

// AggregateRecent reconstructs the conversation list of requester from a flat log.
// Rows whose key does not decompose into requester and one other id are dropped.
// The latest row per key wins, ties going to the later insertion. Output is newest first.
func AggregateRecent(requester string, msgs []LegacyMessage) []RecentConversation {
	latest := make(map[RoomKey]LegacyMessage)
	for _, m := range msgs {
		key, err := ParseRoomKey(m.ConversationID)
		if err != nil || !key.Has(requester) {
			continue
		}
		cur, ok := latest[key]
		if !ok || m.CreatedAt.After(cur.CreatedAt) || (m.CreatedAt.Equal(cur.CreatedAt) && m.Seq > cur.Seq) {
			latest[key] = m
		}
	}

	out := make([]RecentConversation, 0, len(latest))
	for key, m := range latest {
		partner, err := key.Partner(requester)
		if err != nil {
			continue
		}
		out = append(out, RecentConversation{
			ConversationID: key.String(),
			RoomKey:        key,
			PartnerID:      partner,
			LastMessage:    m.Text,
			LastSenderID:   m.SenderID,
			LastTimestamp:  m.CreatedAt,
		})
	}
	sortRecent(out)
	return out
}

// MergeRecent folds canonical conversations of requester into an aggregated legacy view.
// Entries are matched by room key and the newer last message wins, canonical on ties.
// Conversations without messages are skipped. Output is newest first.
func MergeRecent(requester string, legacy []RecentConversation, convs []Conversation) []RecentConversation {
	byKey := make(map[RoomKey]RecentConversation, len(legacy)+len(convs))
	for _, r := range legacy {
		byKey[r.RoomKey] = r
	}
	for _, c := range convs {
		partner, ok := c.Partner(requester)
		if !ok || c.LastMessageAt == nil || c.LastMessage == nil {
			continue
		}
		cur, seen := byKey[c.RoomKey]
		if seen && cur.LastTimestamp.After(*c.LastMessageAt) {
			cur.ConversationID = c.ID
			cur.PartnerKind = partner.Kind
			byKey[c.RoomKey] = cur
			continue
		}
		var sender string
		if c.LastSenderID != nil {
			sender = *c.LastSenderID
		}
		byKey[c.RoomKey] = RecentConversation{
			ConversationID: c.ID,
			RoomKey:        c.RoomKey,
			PartnerID:      partner.ID,
			PartnerKind:    partner.Kind,
			LastMessage:    *c.LastMessage,
			LastSenderID:   sender,
			LastTimestamp:  *c.LastMessageAt,
		}
	}

	out := make([]RecentConversation, 0, len(byKey))
	for _, r := range byKey {
		out = append(out, r)
	}
	sortRecent(out)
	return out
}

func sortRecent(out []RecentConversation) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastTimestamp.Equal(out[j].LastTimestamp) {
			return out[i].LastTimestamp.After(out[j].LastTimestamp)
		}
		return out[i].RoomKey < out[j].RoomKey
	})
}
