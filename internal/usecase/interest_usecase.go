package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/service"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/metrics"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
)

const (
	MaxInterestNoteLength = 1000
	interestTitle         = "New interest in your listing"
)

// InterestUseCase opens (or reuses) the conversation for a listing, posts the
// interest message and tells the listing owner about it.
type InterestUseCase struct {
	conversations *ConversationUseCase
	messages      *MessageUseCase
	directory     service.UserDirectory
	sink          service.NotificationSink
}

func NewInterestUseCase(
	conversations *ConversationUseCase,
	messages *MessageUseCase,
	directory service.UserDirectory,
	sink service.NotificationSink,
) *InterestUseCase {
	return &InterestUseCase{
		conversations: conversations,
		messages:      messages,
		directory:     directory,
		sink:          sink,
	}
}

type RecordInterestInput struct {
	ListingOwnerID string
	ListingRef     string
	Note           string
}

type InterestResult struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	NotificationID string `json:"notification_id"`
}

func (uc *InterestUseCase) RecordInterest(ctx context.Context, callerID string, input RecordInterestInput) (*InterestResult, error) {
	ownerID := strings.TrimSpace(input.ListingOwnerID)
	ref := strings.TrimSpace(input.ListingRef)
	note := strings.TrimSpace(input.Note)

	if ownerID == "" {
		return nil, errors.InvalidRequest("Listing owner is required", nil)
	}
	if ownerID == callerID {
		return nil, errors.InvalidRequest("Cannot express interest in your own listing", nil)
	}
	kind, listingID, ok := entity.ParseListingRef(ref)
	if !ok {
		return nil, errors.InvalidRequest("Listing reference must look like crop:<id> or equipment:<id>", nil)
	}
	if utf8.RuneCountInString(note) > MaxInterestNoteLength {
		return nil, errors.InvalidRequest("Note is too long", nil)
	}

	conv, err := uc.conversations.FindOrCreate(ctx, callerID, ownerID, ref)
	if err != nil {
		return nil, err
	}

	msg, err := uc.messages.appendMessage(ctx, conv.ID, callerID, interestMessageText(kind, listingID, note), entity.MessageKindInterest)
	if err != nil {
		return nil, err
	}
	metrics.InterestsRecorded.Inc()

	notificationID := uc.sink.Emit(ctx, ownerID, service.NotificationPayload{
		Type:    kind + "_interest",
		Title:   interestTitle,
		Message: fmt.Sprintf("%s is interested in your %s listing %s.", uc.requesterName(ctx, callerID), kind, listingID),
		Metadata: map[string]string{
			"requesterId":    callerID,
			"conversationId": conv.ID,
			"listingRef":     ref,
		},
	})

	return &InterestResult{
		ConversationID: conv.ID,
		MessageID:      msg.ID,
		NotificationID: notificationID,
	}, nil
}

func interestMessageText(kind, listingID, note string) string {
	text := fmt.Sprintf("Hi! I'm interested in your %s listing %s.", kind, listingID)
	if note != "" {
		text += "\n\nNote: " + note
	}
	return text
}

func (uc *InterestUseCase) requesterName(ctx context.Context, callerID string) string {
	profile, err := uc.directory.Lookup(ctx, callerID)
	if err != nil || strings.TrimSpace(profile.Name) == "" {
		if err != nil {
			logger.Debug("RecordInterest: requester %s unresolved: %v", callerID, err)
		}
		return "A buyer"
	}
	return profile.Name
}
