package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

func TestAggregateRecent(t *testing.T) {
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	log := []LegacyMessage{
		{Seq: 1, ConversationID: "me_you", SenderID: "me", Text: "hi", CreatedAt: base},
		{Seq: 2, ConversationID: "me_you", SenderID: "you", Text: "hey", CreatedAt: base.Add(time.Minute)},
		{Seq: 3, ConversationID: "him_me", SenderID: "him", Text: "yo", CreatedAt: base.Add(2 * time.Minute)},
		// unsorted legacy key for the same pair must not produce a second entry
		{Seq: 4, ConversationID: "you_me", SenderID: "you", Text: "still there?", CreatedAt: base.Add(3 * time.Minute)},
		// malformed, self and foreign keys are dropped
		{Seq: 5, ConversationID: "me", SenderID: "me", Text: "x", CreatedAt: base.Add(4 * time.Minute)},
		{Seq: 6, ConversationID: "me_me", SenderID: "me", Text: "x", CreatedAt: base.Add(4 * time.Minute)},
		{Seq: 7, ConversationID: "a_b_me", SenderID: "a", Text: "x", CreatedAt: base.Add(4 * time.Minute)},
		{Seq: 8, ConversationID: "other_you", SenderID: "you", Text: "x", CreatedAt: base.Add(4 * time.Minute)},
	}

	got := AggregateRecent("me", log)
	require.Len(t, got, 2)

	assert.Equal(t, "you", got[0].PartnerID)
	assert.Equal(t, "still there?", got[0].LastMessage)
	assert.Equal(t, RoomKey("me_you"), got[0].RoomKey)
	assert.Equal(t, "him", got[1].PartnerID)

	seen := map[string]bool{}
	for _, r := range got {
		assert.False(t, seen[r.PartnerID], "partner %s listed twice", r.PartnerID)
		seen[r.PartnerID] = true
		assert.NotEqual(t, "me", r.PartnerID)
	}
}

func TestAggregateRecentTieBreaksByInsertion(t *testing.T) {
	at := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	log := []LegacyMessage{
		{Seq: 11, ConversationID: "a_b", SenderID: "b", Text: "later insert", CreatedAt: at},
		{Seq: 10, ConversationID: "a_b", SenderID: "a", Text: "earlier insert", CreatedAt: at},
	}
	got := AggregateRecent("a", log)
	require.Len(t, got, 1)
	assert.Equal(t, "later insert", got[0].LastMessage)
	assert.Equal(t, "b", got[0].LastSenderID)
}

func TestAggregateRecentEmpty(t *testing.T) {
	assert.Empty(t, AggregateRecent("me", nil))
}

func TestMergeRecent(t *testing.T) {
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	legacy := AggregateRecent("me", []LegacyMessage{
		{Seq: 1, ConversationID: "me_you", SenderID: "you", Text: "legacy newer", CreatedAt: base.Add(time.Hour)},
		{Seq: 2, ConversationID: "him_me", SenderID: "him", Text: "legacy older", CreatedAt: base},
	})
	at := func(d time.Duration) *time.Time { t := base.Add(d); return &t }
	str := func(s string) *string { return &s }
	me := profile.Ref{Kind: profile.KindStartup, ID: "me"}
	convs := []Conversation{
		{ID: "c-you", RoomKey: "me_you", Participants: [2]profile.Ref{me, {Kind: profile.KindIncubator, ID: "you"}},
			LastMessage: str("canonical older"), LastSenderID: str("me"), LastMessageAt: at(time.Minute)},
		{ID: "c-him", RoomKey: "him_me", Participants: [2]profile.Ref{{Kind: profile.KindStartup, ID: "him"}, me},
			LastMessage: str("canonical newer"), LastSenderID: str("me"), LastMessageAt: at(2 * time.Hour)},
		{ID: "c-new", RoomKey: "me_new", Participants: [2]profile.Ref{me, {Kind: profile.KindStartup, ID: "new"}},
			LastMessage: str("fresh"), LastSenderID: str("new"), LastMessageAt: at(3 * time.Hour)},
		{ID: "c-empty", RoomKey: "empty_me", Participants: [2]profile.Ref{{Kind: profile.KindStartup, ID: "empty"}, me}},
	}

	got := MergeRecent("me", legacy, convs)
	require.Len(t, got, 3)

	assert.Equal(t, "new", got[0].PartnerID)
	assert.Equal(t, "c-new", got[0].ConversationID)

	assert.Equal(t, "him", got[1].PartnerID)
	assert.Equal(t, "canonical newer", got[1].LastMessage)
	assert.Equal(t, "me", got[1].LastSenderID)

	assert.Equal(t, "you", got[2].PartnerID)
	assert.Equal(t, "legacy newer", got[2].LastMessage)
	assert.Equal(t, "c-you", got[2].ConversationID)
	assert.Equal(t, profile.KindIncubator, got[2].PartnerKind)
}
