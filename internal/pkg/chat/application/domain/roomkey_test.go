package chat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	profile "github.com/kanaksh-py/startup-backend/internal/pkg/profile/application/domain"
)

func TestRoomKeyIsOrderIndependent(t *testing.T) {
	pairs := [][2]string{
		{"alpha", "beta"},
		{"64f1a2", "64f1a1"},
		{"Zed", "abe"},
		{"a", "aa"},
	}
	for _, p := range pairs {
		k1, err := NewRoomKey(p[0], p[1])
		require.NoError(t, err)
		k2, err := NewRoomKey(p[1], p[0])
		require.NoError(t, err)
		assert.Equal(t, k1, k2, "pair %v", p)

		a, b := k1.Participants()
		assert.True(t, a < b)
	}
}

func TestRoomKeyRejectsBadIDs(t *testing.T) {
	cases := [][2]string{
		{"", "b"},
		{"a", ""},
		{"same", "same"},
		{"has_sep", "b"},
	}
	for _, c := range cases {
		_, err := NewRoomKey(c[0], c[1])
		assert.ErrorIs(t, err, ErrInvalidRoomKey, "pair %v", c)
	}
}

func TestParseRoomKey(t *testing.T) {
	k, err := ParseRoomKey("beta_alpha")
	require.NoError(t, err)
	assert.Equal(t, RoomKey("alpha_beta"), k)

	for _, bad := range []string{"", "solo", "a_b_c", "_b", "a_", "x_x"} {
		_, err := ParseRoomKey(bad)
		assert.ErrorIs(t, err, ErrInvalidRoomKey, "key %q", bad)
	}
}

func TestRoomKeyPartner(t *testing.T) {
	k, _ := NewRoomKey("s1", "i1")

	p, err := k.Partner("s1")
	require.NoError(t, err)
	assert.Equal(t, "i1", p)

	_, err = k.Partner("x")
	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.False(t, k.Has(""))
}

func TestNewMessageValidation(t *testing.T) {
	k, _ := NewRoomKey("s1", "i1")

	m, err := NewMessage(k, "s1", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", m.Text)
	assert.NotEmpty(t, m.ID)

	_, err = NewMessage(k, "s1", " \n\t ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = NewMessage(k, "intruder", "hi")
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = NewMessage(k, "s1", strings.Repeat("é", MaxMessageRunes+1))
	assert.ErrorIs(t, err, ErrMessageTooLong)

	_, err = NewMessage(k, "s1", strings.Repeat("é", MaxMessageRunes))
	assert.NoError(t, err)
}

func TestConversationAppendNeverGoesBackwards(t *testing.T) {
	k, _ := NewRoomKey("s1", "i1")
	c := Conversation{
		ID:      "conv",
		RoomKey: k,
		Participants: OrderParticipants(
			profile.Ref{Kind: profile.KindStartup, ID: "s1"},
			profile.Ref{Kind: profile.KindIncubator, ID: "i1"},
		),
	}
	assert.Equal(t, "i1", c.Participants[0].ID)

	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m1, _ := NewMessage(k, "s1", "first")
	m1 = c.Append(m1, t0)
	m2, _ := NewMessage(k, "i1", "second")
	m2 = c.Append(m2, t0.Add(-time.Minute))

	assert.Equal(t, "conv", m2.ConversationID)
	assert.False(t, m2.CreatedAt.Before(m1.CreatedAt))
	require.NotNil(t, c.LastMessage)
	assert.Equal(t, "second", *c.LastMessage)
	assert.Equal(t, "i1", *c.LastSenderID)

	partner, ok := c.Partner("s1")
	require.True(t, ok)
	assert.Equal(t, profile.KindIncubator, partner.Kind)
	_, ok = c.Partner("nobody")
	assert.False(t, ok)
}
