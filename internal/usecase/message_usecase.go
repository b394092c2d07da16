package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/repository"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/metrics"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
)

const MaxMessageLength = 4000

type MessageUseCase struct {
	chatRepo repository.ChatRepository
	newID    func() string
}

func NewMessageUseCase(chatRepo repository.ChatRepository) *MessageUseCase {
	return &MessageUseCase{
		chatRepo: chatRepo,
		newID:    func() string { return uuid.New().String() },
	}
}

// Append adds a text message from senderID to the conversation.
func (uc *MessageUseCase) Append(ctx context.Context, conversationID, senderID, text string) (*entity.Message, error) {
	return uc.appendMessage(ctx, conversationID, senderID, text, entity.MessageKindText)
}

func (uc *MessageUseCase) appendMessage(ctx context.Context, conversationID, senderID, text, kind string) (*entity.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.InvalidRequest("Message text is required", nil)
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, errors.InvalidRequest("Message text is too long", nil)
	}
	if strings.TrimSpace(conversationID) == "" {
		return nil, errors.NotFound("Conversation", nil)
	}

	msg := &entity.Message{
		ID:             uc.newID(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		Kind:           kind,
	}
	if err := uc.chatRepo.Append(ctx, msg); err != nil {
		if !errors.IsTaxonomy(err) {
			logger.Error("SendMessage Error: %v", err)
		}
		return nil, err
	}

	metrics.MessagesAppended.WithLabelValues(kind).Inc()
	return msg, nil
}

// List returns the conversation's messages ordered by (createdAt, sequence).
func (uc *MessageUseCase) List(ctx context.Context, conversationID, callerID string) ([]*entity.Message, error) {
	if _, err := uc.authorize(ctx, conversationID, callerID); err != nil {
		return nil, err
	}

	messages, err := uc.chatRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []*entity.Message{}
	}
	return messages, nil
}

// RepairLastMessage rewrites the cached last message from the log when they
// disagree. It reports whether anything was written. It never overwrites the
// snapshot of a message appended while it runs.
func (uc *MessageUseCase) RepairLastMessage(ctx context.Context, conversationID string) (bool, error) {
	if strings.TrimSpace(conversationID) == "" {
		return false, errors.NotFound("Conversation", nil)
	}
	conv, err := uc.chatRepo.GetByID(ctx, conversationID)
	if err != nil {
		return false, err
	}

	var (
		want        *entity.LastMessage
		logSequence int64
	)
	latest, err := uc.chatRepo.Latest(ctx, conversationID)
	switch {
	case err == nil:
		want, logSequence = latest.Snapshot(), latest.Sequence
	case errors.Is(err, errors.CodeNotFound):
	default:
		return false, err
	}

	if conv.LastMessage.Equal(want) {
		metrics.LastMessageRepairs.WithLabelValues("clean").Inc()
		return false, nil
	}

	// An append that lands after Latest already wrote its own snapshot.
	err = uc.chatRepo.SetLastMessage(ctx, conversationID, logSequence, want)
	if errors.Is(err, errors.CodeConflict) {
		metrics.LastMessageRepairs.WithLabelValues("superseded").Inc()
		logger.Debug("Skipped last message repair of %s: newer messages arrived", conversationID)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	metrics.LastMessageRepairs.WithLabelValues("repaired").Inc()
	logger.Warn("Repaired last message of conversation %s", conversationID)
	return true, nil
}

func (uc *MessageUseCase) authorize(ctx context.Context, conversationID, callerID string) (*entity.Conversation, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, errors.NotFound("Conversation", nil)
	}
	conv, err := uc.chatRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(callerID) {
		return nil, errors.Forbidden("You are not a participant in this conversation", nil)
	}
	return conv, nil
}
