package usecase

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/repository"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/service"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
)

// peerLookupLimit bounds concurrent UserDirectory lookups per listing.
const peerLookupLimit = 8

type ConversationSummary struct {
	Conversation *entity.Conversation `json:"conversation"`
	Peer         *entity.UserProfile  `json:"peer"`
	LastMessage  *entity.LastMessage  `json:"last_message"`
}

type SummaryUseCase struct {
	convRepo  repository.ConversationRepository
	directory service.UserDirectory
}

func NewSummaryUseCase(convRepo repository.ConversationRepository, directory service.UserDirectory) *SummaryUseCase {
	return &SummaryUseCase{convRepo: convRepo, directory: directory}
}

func (uc *SummaryUseCase) ListForUser(ctx context.Context, callerID string) ([]ConversationSummary, error) {
	conversations, err := uc.convRepo.ListByParticipant(ctx, callerID)
	if err != nil {
		logger.Error("ListConversations Error: %v", err)
		return nil, err
	}

	summaries := make([]ConversationSummary, len(conversations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(peerLookupLimit)

	for i, conv := range conversations {
		i, conv := i, conv
		summaries[i] = ConversationSummary{Conversation: conv, LastMessage: conv.LastMessage}
		g.Go(func() error {
			peer, err := uc.directory.Lookup(gctx, conv.PeerOf(callerID))
			if err != nil {
				logger.Debug("ListConversations: peer of %s unresolved: %v", conv.ID, err)
				return nil
			}
			summaries[i].Peer = peer
			return nil
		})
	}
	// lookups never return errors, so Wait only joins them
	_ = g.Wait()

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].Conversation, summaries[j].Conversation
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
	return summaries, nil
}
