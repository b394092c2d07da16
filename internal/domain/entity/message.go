package entity

import (
	"fmt"
	"strings"
	"time"
)

const (
	MessageKindText     = "text"
	MessageKindInterest = "interest"
)

type Message struct {
	ID             string    `json:"id" firestore:"id"`
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	SenderID       string    `json:"sender_id" firestore:"senderId"`
	Text           string    `json:"text" firestore:"text"`
	Kind           string    `json:"kind" firestore:"kind"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
	Sequence       int64     `json:"sequence" firestore:"sequence"`
}

// Before orders messages by (CreatedAt, Sequence).
func (m *Message) Before(other *Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.Sequence < other.Sequence
}

// Snapshot converts the message into the conversation's cached summary.
func (m *Message) Snapshot() *LastMessage {
	return &LastMessage{
		MessageID: m.ID,
		Text:      m.Text,
		SenderID:  m.SenderID,
		CreatedAt: m.CreatedAt,
		Sequence:  m.Sequence,
	}
}

func (m *Message) Validate() error {
	if m.ID == "" || m.ConversationID == "" {
		return fmt.Errorf("message: missing id or conversation id")
	}
	if !ValidUserID(m.SenderID) {
		return fmt.Errorf("message %s: malformed sender id", m.ID)
	}
	if strings.TrimSpace(m.Text) == "" {
		return fmt.Errorf("message %s: empty text", m.ID)
	}
	if m.Kind != MessageKindText && m.Kind != MessageKindInterest {
		return fmt.Errorf("message %s: unknown kind %q", m.ID, m.Kind)
	}
	if m.CreatedAt.IsZero() || m.Sequence <= 0 {
		return fmt.Errorf("message %s: missing ordering fields", m.ID)
	}
	return nil
}

// NextMessageTime returns the creation time for the next message: now,
// clamped so that it never precedes the previous message.
func NextMessageTime(now time.Time, previous *LastMessage) time.Time {
	t := now.UTC().Truncate(time.Microsecond)
	if previous != nil && t.Before(previous.CreatedAt) {
		return previous.CreatedAt
	}
	return t
}

// Equal reports whether two snapshots point at the same message.
func (lm *LastMessage) Equal(other *LastMessage) bool {
	if lm == nil || other == nil {
		return lm == other
	}
	return lm.MessageID == other.MessageID &&
		lm.Text == other.Text &&
		lm.SenderID == other.SenderID &&
		lm.CreatedAt.Equal(other.CreatedAt) &&
		lm.Sequence == other.Sequence
}
