package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/repository"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
)

var fixedNow = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

func TestAppend_AssignsSequenceWithCollidingTimestamps(t *testing.T) {
	f := newFixture()
	f.repo.WithClock(func() time.Time { return fixedNow })
	ctx := context.Background()

	conv, err := f.conversations.FindOrCreate(ctx, "u1", "u2", "")
	require.NoError(t, err)

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender := "u1"
			if i%2 == 1 {
				sender = "u2"
			}
			_, err := f.messages.Append(ctx, conv.ID, sender, "ping")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	messages, err := f.messages.List(ctx, conv.ID, "u1")
	require.NoError(t, err)
	require.Len(t, messages, n)

	seen := make(map[int64]bool)
	for i, m := range messages {
		assert.False(t, seen[m.Sequence], "duplicate sequence %d", m.Sequence)
		seen[m.Sequence] = true
		if i > 0 {
			assert.True(t, messages[i-1].Before(m), "messages %d and %d out of order", i-1, i)
		}
	}
}

func TestAppend_ClockSkewNeverReordersLog(t *testing.T) {
	f := newFixture()
	// wall clock runs backwards
	f.repo.WithClock(steppingClock(fixedNow, -time.Second))
	ctx := context.Background()

	conv, err := f.conversations.FindOrCreate(ctx, "u1", "u2", "")
	require.NoError(t, err)

	var sent []*entity.Message
	for _, text := range []string{"one", "two", "three"} {
		m, err := f.messages.Append(ctx, conv.ID, "u1", text)
		require.NoError(t, err)
		sent = append(sent, m)
	}

	listed, err := f.messages.List(ctx, conv.ID, "u2")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	for i := range sent {
		assert.Equal(t, sent[i].ID, listed[i].ID)
		assert.Equal(t, int64(i+1), listed[i].Sequence)
	}
}

func TestAppend_UpdatesLastMessageCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	conv, err := f.conversations.FindOrCreate(ctx, "u1", "u2", "crop:77")
	require.NoError(t, err)

	msg, err := f.messages.Append(ctx, conv.ID, "u2", "  hi  ")
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, entity.MessageKindText, msg.Kind)

	for _, user := range []string{"u1", "u2"} {
		summaries, err := f.summaries.ListForUser(ctx, user)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		require.NotNil(t, summaries[0].LastMessage)
		assert.Equal(t, "hi", summaries[0].LastMessage.Text)
		assert.Equal(t, "u2", summaries[0].LastMessage.SenderID)
		assert.Equal(t, msg.ID, summaries[0].LastMessage.MessageID)
	}
}

func TestAppend_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	conv, err := f.conversations.FindOrCreate(ctx, "u1", "u2", "")
	require.NoError(t, err)

	_, err = f.messages.Append(ctx, conv.ID, "u1", "   ")
	assert.True(t, errors.Is(err, errors.CodeInvalidRequest))

	_, err = f.messages.Append(ctx, conv.ID, "u1", strings.Repeat("x", MaxMessageLength+1))
	assert.True(t, errors.Is(err, errors.CodeInvalidRequest))

	_, err = f.messages.Append(ctx, "missing", "u1", "hello")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, err = f.messages.Append(ctx, conv.ID, "mallory", "hello")
	assert.True(t, errors.Is(err, errors.CodeForbidden))
}

func TestList_Authorization(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	conv, err := f.conversations.FindOrCreate(ctx, "u1", "u2", "")
	require.NoError(t, err)

	_, err = f.messages.List(ctx, conv.ID, "mallory")
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = f.messages.List(ctx, "missing", "u1")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	empty, err := f.messages.List(ctx, conv.ID, "u1")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRepairLastMessage(t *testing.T) {
	f := newFixture()
	f.repo.WithClock(steppingClock(fixedNow, time.Second))
	ctx := context.Background()

	conv, err := f.conversations.FindOrCreate(ctx, "u1", "u2", "")
	require.NoError(t, err)

	repaired, err := f.messages.RepairLastMessage(ctx, conv.ID)
	require.NoError(t, err)
	assert.False(t, repaired, "empty conversation is already consistent")

	first, err := f.messages.Append(ctx, conv.ID, "u1", "first")
	require.NoError(t, err)
	last, err := f.messages.Append(ctx, conv.ID, "u2", "second")
	require.NoError(t, err)

	// simulate a cache write lost after the log append
	require.NoError(t, f.repo.SetLastMessage(ctx, conv.ID, last.Sequence, first.Snapshot()))

	repaired, err = f.messages.RepairLastMessage(ctx, conv.ID)
	require.NoError(t, err)
	assert.True(t, repaired)

	stored, err := f.repo.GetByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.True(t, stored.LastMessage.Equal(last.Snapshot()))

	repaired, err = f.messages.RepairLastMessage(ctx, conv.ID)
	require.NoError(t, err)
	assert.False(t, repaired)

	_, err = f.messages.RepairLastMessage(ctx, "missing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

// appendDuringLatest lets a send land between the log read and the cache
// write of a repair.
type appendDuringLatest struct {
	*repository.MemoryChatRepository
	once    sync.Once
	pending *entity.Message
}

func (r *appendDuringLatest) Latest(ctx context.Context, conversationID string) (*entity.Message, error) {
	latest, err := r.MemoryChatRepository.Latest(ctx, conversationID)
	r.once.Do(func() {
		if appendErr := r.MemoryChatRepository.Append(ctx, r.pending); appendErr != nil {
			panic(appendErr)
		}
	})
	return latest, err
}

func TestRepairLastMessage_ConcurrentSendKeepsNewestSnapshot(t *testing.T) {
	f := newFixture()
	f.repo.WithClock(steppingClock(fixedNow, time.Second))
	ctx := context.Background()

	conv, err := f.conversations.FindOrCreate(ctx, "u1", "u2", "")
	require.NoError(t, err)
	first, err := f.messages.Append(ctx, conv.ID, "u1", "first")
	require.NoError(t, err)

	// cache lost, so the repair has something to write
	require.NoError(t, f.repo.SetLastMessage(ctx, conv.ID, first.Sequence, nil))

	racing := &appendDuringLatest{
		MemoryChatRepository: f.repo,
		pending: &entity.Message{
			ID:             "m-second",
			ConversationID: conv.ID,
			SenderID:       "u2",
			Text:           "second",
			Kind:           entity.MessageKindText,
		},
	}
	repaired, err := NewMessageUseCase(racing).RepairLastMessage(ctx, conv.ID)
	require.NoError(t, err)
	assert.False(t, repaired)

	latest, err := f.repo.Latest(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", latest.Text)

	stored, err := f.repo.GetByID(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastMessage)
	assert.Equal(t, "second", stored.LastMessage.Text)
	assert.True(t, stored.LastMessage.Equal(latest.Snapshot()))
}
