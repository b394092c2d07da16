package repository

import (
	"context"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
)

type ConversationRepository interface {
	// Create stores a new conversation. It returns a CONFLICT error when a
	// conversation with the same (participantKey, context) already exists.
	Create(ctx context.Context, conversation *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	GetByKey(ctx context.Context, participantKey, context string) (*entity.Conversation, error)
	// ListByParticipant returns the user's conversations, newest activity first.
	ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error)
	// SetLastMessage overwrites the cached last message and bumps updatedAt to
	// at least the message's creation time. The write only happens while the
	// conversation's lastSequence still equals logSequence; otherwise it
	// returns a CONFLICT error and leaves the record untouched.
	SetLastMessage(ctx context.Context, conversationID string, logSequence int64, last *entity.LastMessage) error
}

type MessageRepository interface {
	// Append assigns the message's Sequence and CreatedAt, stores it and
	// refreshes the parent conversation's cache in one atomic operation.
	Append(ctx context.Context, message *entity.Message) error
	// ListByConversation returns messages ascending by (createdAt, sequence).
	ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error)
	// Latest returns the message with the greatest (createdAt, sequence).
	Latest(ctx context.Context, conversationID string) (*entity.Message, error)
}

type ChatRepository interface {
	ConversationRepository
	MessageRepository
}
