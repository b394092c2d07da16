package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/repository"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
)

func TestFindOrCreate_Idempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.conversations.FindOrCreate(ctx, "u1", "u2", "crop:77")
	require.NoError(t, err)

	again, err := f.conversations.FindOrCreate(ctx, "u2", "u1", "crop:77")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "crop:77", again.Context)

	general, err := f.conversations.FindOrCreate(ctx, "u1", "u2", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, general.ID)
	assert.Equal(t, entity.GeneralContext, general.Context)

	explicit, err := f.conversations.FindOrCreate(ctx, "u2", "u1", "general")
	require.NoError(t, err)
	assert.Equal(t, general.ID, explicit.ID)
}

func TestFindOrCreate_ConcurrentConvergence(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	const n = 64
	ids := make([]string, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			caller, peer := "u1", "u2"
			if i%2 == 1 {
				caller, peer = peer, caller
			}
			conv, err := f.conversations.FindOrCreate(ctx, caller, peer, "crop:77")
			errs[i] = err
			if err == nil {
				ids[i] = conv.ID
			}
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	listed, err := f.repo.ListByParticipant(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestFindOrCreate_RejectsInvalidInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  string
		peer    string
		context string
	}{
		{"self chat", "u1", "u1", ""},
		{"self chat with context", "u1", "u1", "crop:77"},
		{"missing peer", "u1", "", ""},
		{"malformed peer", "u1", "u 2", ""},
		{"malformed context", "u1", "u2", "crop"},
		{"unknown listing kind", "u1", "u2", "fertilizer:3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.conversations.FindOrCreate(ctx, tt.caller, tt.peer, tt.context)
			assert.True(t, errors.Is(err, errors.CodeInvalidRequest), "got %v", err)
		})
	}

	listed, err := f.repo.ListByParticipant(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

// racingRepo simulates a concurrent creator winning between lookup and create.
type racingRepo struct {
	*repository.MemoryChatRepository
	winner       *entity.Conversation
	refetchFails bool
}

func (r *racingRepo) Create(ctx context.Context, c *entity.Conversation) error {
	if r.winner != nil {
		if err := r.MemoryChatRepository.Create(ctx, r.winner); err != nil {
			return err
		}
	}
	return errors.Conflict("Conversation already exists for participants and context", nil)
}

func (r *racingRepo) GetByKey(ctx context.Context, participantKey, context string) (*entity.Conversation, error) {
	if r.refetchFails {
		return nil, errors.NotFound("Conversation", nil)
	}
	return r.MemoryChatRepository.GetByKey(ctx, participantKey, context)
}

func TestFindOrCreate_ConflictReturnsWinner(t *testing.T) {
	mem := repository.NewMemoryChatRepository()
	winner := entity.NewConversation("winner-id", "u2", "u1", "crop:77", fixedNow)
	uc := NewConversationUseCase(&racingRepo{MemoryChatRepository: mem, winner: winner}, newFakeDirectory())

	conv, err := uc.FindOrCreate(context.Background(), "u1", "u2", "crop:77")
	require.NoError(t, err)
	assert.Equal(t, "winner-id", conv.ID)
}

func TestFindOrCreate_ConflictThenMissingIsUnavailable(t *testing.T) {
	repo := &racingRepo{MemoryChatRepository: repository.NewMemoryChatRepository(), refetchFails: true}
	uc := NewConversationUseCase(repo, newFakeDirectory())

	_, err := uc.FindOrCreate(context.Background(), "u1", "u2", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeUnavailable))
	assert.False(t, errors.IsTaxonomy(err))
}

func TestStartOrGet_AttachesPeer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.conversations.StartOrGet(ctx, "buyer", "farmer", "")
	require.NoError(t, err)
	require.NotNil(t, resp.Peer)
	assert.Equal(t, "Rajesh Kumar", resp.Peer.Name)

	resp, err = f.conversations.StartOrGet(ctx, "buyer", "ghost", "")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Conversation.ID)
	assert.Nil(t, resp.Peer)
}

func TestStartOrGet_UnresolvedPeerLogsTrimmedID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	previous := logger.L()
	logger.Use(zap.New(core))
	t.Cleanup(func() { logger.Use(previous) })

	f := newFixture()
	resp, err := f.conversations.StartOrGet(context.Background(), "u1", "  ghost  ", "")
	require.NoError(t, err)
	assert.Nil(t, resp.Peer)
	assert.Equal(t, "ghost", resp.Conversation.PeerOf("u1"))

	entries := logs.FilterMessageSnippet("StartOrGet").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "peer ghost unresolved")
}
