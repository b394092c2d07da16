package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/repository"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/service"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
)

func TestRecordInterest_OpensConversationAndNotifies(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	result, err := f.interests.RecordInterest(ctx, "buyer", RecordInterestInput{
		ListingOwnerID: "farmer",
		ListingRef:     "equipment:9",
		Note:           "available tomorrow?",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ConversationID)
	assert.NotEmpty(t, result.MessageID)
	assert.Equal(t, "notif-farmer", result.NotificationID)

	conv, err := f.repo.GetByID(ctx, result.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "equipment:9", conv.Context)
	assert.True(t, conv.HasParticipant("buyer"))
	assert.True(t, conv.HasParticipant("farmer"))

	messages, err := f.messages.List(ctx, conv.ID, "farmer")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, result.MessageID, messages[0].ID)
	assert.Equal(t, "buyer", messages[0].SenderID)
	assert.Equal(t, entity.MessageKindInterest, messages[0].Kind)
	assert.Equal(t, "Hi! I'm interested in your equipment listing 9.\n\nNote: available tomorrow?", messages[0].Text)

	calls := f.sink.emitted()
	require.Len(t, calls, 1)
	assert.Equal(t, "farmer", calls[0].UserID)
	assert.Equal(t, "equipment_interest", calls[0].Payload.Type)
	assert.Equal(t, "New interest in your listing", calls[0].Payload.Title)
	assert.Contains(t, calls[0].Payload.Message, "Priya Sharma")
	assert.Equal(t, map[string]string{
		"requesterId":    "buyer",
		"conversationId": conv.ID,
		"listingRef":     "equipment:9",
	}, calls[0].Payload.Metadata)
}

func TestRecordInterest_ReusesConversation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	existing, err := f.conversations.FindOrCreate(ctx, "farmer", "buyer", "crop:77")
	require.NoError(t, err)

	first, err := f.interests.RecordInterest(ctx, "buyer", RecordInterestInput{ListingOwnerID: "farmer", ListingRef: "crop:77"})
	require.NoError(t, err)
	second, err := f.interests.RecordInterest(ctx, "buyer", RecordInterestInput{ListingOwnerID: "farmer", ListingRef: "crop:77"})
	require.NoError(t, err)

	assert.Equal(t, existing.ID, first.ConversationID)
	assert.Equal(t, existing.ID, second.ConversationID)
	assert.NotEqual(t, first.MessageID, second.MessageID)

	messages, err := f.messages.List(ctx, existing.ID, "buyer")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.False(t, strings.Contains(messages[0].Text, "Note:"))
	assert.Len(t, f.sink.emitted(), 2)
}

func TestRecordInterest_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		name  string
		input RecordInterestInput
	}{
		{"own listing", RecordInterestInput{ListingOwnerID: "buyer", ListingRef: "crop:1"}},
		{"missing owner", RecordInterestInput{ListingRef: "crop:1"}},
		{"missing listing", RecordInterestInput{ListingOwnerID: "farmer"}},
		{"malformed listing", RecordInterestInput{ListingOwnerID: "farmer", ListingRef: "crop-1"}},
		{"note too long", RecordInterestInput{ListingOwnerID: "farmer", ListingRef: "crop:1", Note: strings.Repeat("n", MaxInterestNoteLength+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.interests.RecordInterest(ctx, "buyer", tt.input)
			assert.True(t, errors.Is(err, errors.CodeInvalidRequest), "got %v", err)
		})
	}

	assert.Empty(t, f.sink.emitted())
	listed, err := f.repo.ListByParticipant(ctx, "buyer")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestRecordInterest_UnknownRequesterStillNotifies(t *testing.T) {
	f := newFixture()

	_, err := f.interests.RecordInterest(context.Background(), "stranger", RecordInterestInput{ListingOwnerID: "farmer", ListingRef: "crop:5"})
	require.NoError(t, err)

	calls := f.sink.emitted()
	require.Len(t, calls, 1)
	assert.Equal(t, "A buyer is interested in your crop listing 5.", calls[0].Payload.Message)
}

type failingNotificationRepo struct {
	*repository.MemoryNotificationRepository
}

func (failingNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	return errors.Unavailable("Failed to create notification", nil)
}

func TestRecordInterest_SinkFailureDoesNotFailCall(t *testing.T) {
	f := newFixture()
	notifications := failingNotificationRepo{repository.NewMemoryNotificationRepository()}
	sink := service.NewStoreNotificationSink(notifications, time.Second)
	uc := NewInterestUseCase(f.conversations, f.messages, f.directory, sink)
	ctx := context.Background()

	result, err := uc.RecordInterest(ctx, "buyer", RecordInterestInput{ListingOwnerID: "farmer", ListingRef: "crop:77"})
	require.NoError(t, err)
	sink.Flush()

	assert.NotEmpty(t, result.NotificationID)
	messages, err := f.messages.List(ctx, result.ConversationID, "farmer")
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	_, err = notifications.GetByID(ctx, result.NotificationID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}
