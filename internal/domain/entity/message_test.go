package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextMessageTime_ClampsToPrevious(t *testing.T) {
	prev := &LastMessage{CreatedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}

	earlier := prev.CreatedAt.Add(-time.Second)
	assert.Equal(t, prev.CreatedAt, NextMessageTime(earlier, prev))

	later := prev.CreatedAt.Add(time.Second)
	assert.Equal(t, later, NextMessageTime(later, prev))

	assert.Equal(t, later, NextMessageTime(later, nil))
}

func TestNextMessageTime_MicrosecondUTC(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, 3, 4, 10, 0, 0, 123456789, loc)

	got := NextMessageTime(now, nil)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 123456000, got.Nanosecond())
}

func TestMessage_Before(t *testing.T) {
	ts := time.Now()
	a := &Message{CreatedAt: ts, Sequence: 1}
	b := &Message{CreatedAt: ts, Sequence: 2}
	c := &Message{CreatedAt: ts.Add(-time.Millisecond), Sequence: 3}

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, c.Before(a))
}

func TestMessage_Validate(t *testing.T) {
	m := &Message{ID: "m1", ConversationID: "c1", SenderID: "alice", Text: "hi", Kind: MessageKindText, CreatedAt: time.Now(), Sequence: 1}
	assert.NoError(t, m.Validate())

	blank := *m
	blank.Text = "   "
	assert.Error(t, blank.Validate())

	unknown := *m
	unknown.Kind = "offer"
	assert.Error(t, unknown.Validate())

	unsequenced := *m
	unsequenced.Sequence = 0
	assert.Error(t, unsequenced.Validate())
}

func TestLastMessage_Equal(t *testing.T) {
	ts := time.Now()
	a := &LastMessage{MessageID: "m1", Text: "hi", SenderID: "alice", CreatedAt: ts, Sequence: 1}
	b := *a

	assert.True(t, a.Equal(&b))
	assert.True(t, (*LastMessage)(nil).Equal(nil))
	assert.False(t, a.Equal(nil))

	b.Sequence = 2
	assert.False(t, a.Equal(&b))
}
