package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionsToggle(t *testing.T) {
	thumbsUp := Emoji{Name: "👍"}
	heart := Emoji{Name: "❤️"}

	var rs Reactions

	rs = rs.Toggle(thumbsUp, "user1")
	require.Len(t, rs, 1)
	assert.Equal(t, []string{"user1"}, rs[0].UserIds)

	// second voter on the same emoji
	rs = rs.Toggle(thumbsUp, "user2")
	require.Len(t, rs, 1)
	assert.Len(t, rs[0].UserIds, 2)

	// toggling the same vote removes it
	rs = rs.Toggle(thumbsUp, "user2")
	require.Len(t, rs, 1)
	assert.Equal(t, []string{"user1"}, rs[0].UserIds)

	// new emoji appends, preserving order
	rs = rs.Toggle(heart, "user1")
	require.Len(t, rs, 2)
	assert.Equal(t, "👍", rs[0].Emoji.Name)
	assert.Equal(t, "❤️", rs[1].Emoji.Name)

	// last voter leaving drops the reaction entirely
	rs = rs.Toggle(thumbsUp, "user1")
	require.Len(t, rs, 1)
	assert.Equal(t, "❤️", rs[0].Emoji.Name)
}

func TestReactionsCounts(t *testing.T) {
	rs := Reactions{
		{Emoji: Emoji{Name: "👍"}, UserIds: []string{"a", "b", "c"}},
		{Emoji: Emoji{Name: "❤️"}, UserIds: []string{"a"}},
	}

	counts := rs.Counts()
	require.Len(t, counts, 2)
	assert.Equal(t, 3, counts[0].Count)
	assert.Equal(t, 1, counts[1].Count)
}

func TestReactionsScanRoundTrip(t *testing.T) {
	rs := Reactions{{Emoji: Emoji{Name: "👍"}, UserIds: []string{"a"}}}

	val, err := rs.Value()
	require.NoError(t, err)

	var decoded Reactions
	require.NoError(t, decoded.Scan(val))
	assert.Equal(t, rs, decoded)

	var empty Reactions
	require.NoError(t, empty.Scan(nil))
	assert.Empty(t, empty)
}
