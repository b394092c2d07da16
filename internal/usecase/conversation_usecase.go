package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/repository"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/service"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/metrics"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
)

// ConversationUseCase finds or creates the single conversation for a pair of
// users and a context.
type ConversationUseCase struct {
	convRepo  repository.ConversationRepository
	directory service.UserDirectory
	newID     func() string
	now       func() time.Time
}

func NewConversationUseCase(convRepo repository.ConversationRepository, directory service.UserDirectory) *ConversationUseCase {
	return &ConversationUseCase{
		convRepo:  convRepo,
		directory: directory,
		newID:     func() string { return uuid.New().String() },
		now:       time.Now,
	}
}

type ConversationResponse struct {
	Conversation *entity.Conversation `json:"conversation"`
	Peer         *entity.UserProfile  `json:"peer"`
}

// StartOrGet returns the conversation with peerID plus the peer's profile.
// A profile that cannot be resolved is returned as nil.
func (uc *ConversationUseCase) StartOrGet(ctx context.Context, callerID, peerID, convContext string) (*ConversationResponse, error) {
	conv, err := uc.FindOrCreate(ctx, callerID, peerID, convContext)
	if err != nil {
		return nil, err
	}

	resp := &ConversationResponse{Conversation: conv}
	resolvedPeerID := conv.PeerOf(callerID)
	peer, err := uc.directory.Lookup(ctx, resolvedPeerID)
	if err != nil {
		logger.Debug("StartOrGet: peer %s unresolved: %v", resolvedPeerID, err)
	} else {
		resp.Peer = peer
	}
	return resp, nil
}

func (uc *ConversationUseCase) FindOrCreate(ctx context.Context, callerID, peerID, convContext string) (*entity.Conversation, error) {
	peerID = strings.TrimSpace(peerID)
	if peerID == "" {
		return nil, errors.InvalidRequest("Recipient is required", nil)
	}
	if !entity.ValidUserID(callerID) || !entity.ValidUserID(peerID) {
		return nil, errors.InvalidRequest("Malformed user id", nil)
	}
	if callerID == peerID {
		return nil, errors.InvalidRequest("Cannot start a conversation with yourself", nil)
	}

	normalized, err := entity.NormalizeContext(convContext)
	if err != nil {
		return nil, errors.InvalidRequest("Context must be a listing reference like crop:<id> or equipment:<id>", err)
	}

	key := entity.ParticipantKey(callerID, peerID)

	existing, err := uc.convRepo.GetByKey(ctx, key, normalized)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	now := uc.now().UTC().Truncate(time.Microsecond)
	conv := entity.NewConversation(uc.newID(), callerID, peerID, normalized, now)

	err = uc.convRepo.Create(ctx, conv)
	if err == nil {
		metrics.ConversationsCreated.Inc()
		logger.Info("Conversation %s created for %s (%s)", conv.ID, key, normalized)
		return conv, nil
	}
	if !errors.Is(err, errors.CodeConflict) {
		return nil, err
	}

	// Another caller created it first; read theirs back exactly once.
	metrics.ConversationCreateConflicts.Inc()
	winner, err := uc.convRepo.GetByKey(ctx, key, normalized)
	if err != nil {
		logger.Error("FindOrCreate: refetch after conflict failed for %s (%s): %v", key, normalized, err)
		return nil, errors.Unavailable("Conversation could not be resolved", err)
	}
	return winner, nil
}
