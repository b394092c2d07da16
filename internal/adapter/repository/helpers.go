package repository

import (
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
)

// conversationKeyID derives a fixed-length document id for the
// (participantKey, context) uniqueness record.
func conversationKeyID(participantKey, context string) string {
	sum := sha256.Sum256([]byte(participantKey + "\x00" + context))
	return hex.EncodeToString(sum[:])
}

func cloneConversation(c *entity.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Participants = append([]string(nil), c.Participants...)
	if c.LastMessage != nil {
		lm := *c.LastMessage
		cp.LastMessage = &lm
	}
	return &cp
}

func cloneMessage(m *entity.Message) *entity.Message {
	cp := *m
	return &cp
}

func cloneNotification(n *entity.Notification) *entity.Notification {
	cp := *n
	if n.Metadata != nil {
		cp.Metadata = make(map[string]string, len(n.Metadata))
		for k, v := range n.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// storageFault passes AppErrors through untouched and reports anything else
// coming out of a driver as UNAVAILABLE.
func storageFault(message string, err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.Unavailable(message, err)
}
