package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantKey_OrderIndependent(t *testing.T) {
	pairs := [][2]string{
		{"alice", "bob"},
		{"u1", "U1"},
		{"farmer-9", "buyer_2"},
		{"a", "ab"},
	}
	for _, p := range pairs {
		assert.Equal(t, ParticipantKey(p[0], p[1]), ParticipantKey(p[1], p[0]), "pair %v", p)
	}
	assert.Equal(t, "alice|bob", ParticipantKey("bob", "alice"))
}

func TestParticipantKey_NoCollisionAcrossSplits(t *testing.T) {
	// "|" cannot occur in a user id, so different pairs never share a key.
	assert.NotEqual(t, ParticipantKey("a", "b_c"), ParticipantKey("a_b", "c"))
	assert.False(t, ValidUserID("a|b"))
}

func TestNormalizeContext(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", GeneralContext, false},
		{"  ", GeneralContext, false},
		{"general", GeneralContext, false},
		{"crop:77", "crop:77", false},
		{" equipment:tractor_9 ", "equipment:tractor_9", false},
		{"crop:", "", true},
		{"livestock:1", "", true},
		{"crop:77/../x", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeContext(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseListingRef(t *testing.T) {
	kind, id, ok := ParseListingRef("equipment:9")
	require.True(t, ok)
	assert.Equal(t, "equipment", kind)
	assert.Equal(t, "9", id)

	_, _, ok = ParseListingRef("equipment")
	assert.False(t, ok)
}

func TestConversation_Validate(t *testing.T) {
	now := time.Now()
	valid := func() *Conversation {
		return NewConversation("c1", "alice", "bob", GeneralContext, now)
	}

	require.NoError(t, valid().Validate())

	self := NewConversation("c2", "alice", "alice", GeneralContext, now)
	assert.Error(t, self.Validate())

	badKey := valid()
	badKey.ParticipantKey = "alice|carol"
	assert.Error(t, badKey.Validate())

	badContext := valid()
	badContext.Context = "whatever"
	assert.Error(t, badContext.Validate())

	strangerLast := valid()
	strangerLast.LastMessage = &LastMessage{MessageID: "m1", SenderID: "mallory", CreatedAt: now, Sequence: 1}
	assert.Error(t, strangerLast.Validate())
}

func TestConversation_PeerOf(t *testing.T) {
	c := NewConversation("c1", "alice", "bob", GeneralContext, time.Now())
	assert.Equal(t, "bob", c.PeerOf("alice"))
	assert.Equal(t, "alice", c.PeerOf("bob"))
	assert.Equal(t, "", c.PeerOf("mallory"))
}
