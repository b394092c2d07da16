package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/repository"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
)

// MemoryChatRepository keeps conversations and messages in process memory.
// The mutex stands in for the atomicity a real store provides; it backs the
// memory storage driver and the tests.
type MemoryChatRepository struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
	keys          map[string]string
	messages      map[string][]*entity.Message
	now           func() time.Time
}

func NewMemoryChatRepository() *MemoryChatRepository {
	return &MemoryChatRepository{
		conversations: make(map[string]*entity.Conversation),
		keys:          make(map[string]string),
		messages:      make(map[string][]*entity.Message),
		now:           time.Now,
	}
}

var _ repository.ChatRepository = (*MemoryChatRepository)(nil)

// WithClock overrides the wall clock used to stamp appended messages.
func (r *MemoryChatRepository) WithClock(now func() time.Time) *MemoryChatRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	return r
}

func (r *MemoryChatRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	if err := conversation.Validate(); err != nil {
		return errors.Internal("Refusing to store malformed conversation", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := conversationKeyID(conversation.ParticipantKey, conversation.Context)
	if _, taken := r.keys[key]; taken {
		return errors.Conflict("Conversation already exists for participants and context", nil)
	}
	if _, taken := r.conversations[conversation.ID]; taken {
		return errors.Conflict("Conversation id already in use", nil)
	}

	r.keys[key] = conversation.ID
	r.conversations[conversation.ID] = cloneConversation(conversation)
	return nil
}

func (r *MemoryChatRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return cloneConversation(c), nil
}

func (r *MemoryChatRepository) GetByKey(ctx context.Context, participantKey, context string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.keys[conversationKeyID(participantKey, context)]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return cloneConversation(r.conversations[id]), nil
}

func (r *MemoryChatRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Conversation
	for _, c := range r.conversations {
		if c.HasParticipant(userID) {
			out = append(out, cloneConversation(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryChatRepository) SetLastMessage(ctx context.Context, conversationID string, logSequence int64, last *entity.LastMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conversations[conversationID]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	if c.LastSequence != logSequence {
		return errors.Conflict("Conversation has newer messages", nil)
	}
	if last == nil {
		c.LastMessage = nil
		return nil
	}
	lm := *last
	c.LastMessage = &lm
	if lm.CreatedAt.After(c.UpdatedAt) {
		c.UpdatedAt = lm.CreatedAt
	}
	return nil
}

func (r *MemoryChatRepository) Append(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conversations[message.ConversationID]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	if !c.HasParticipant(message.SenderID) {
		return errors.Forbidden("Sender is not a participant in this conversation", nil)
	}

	message.Sequence = c.LastSequence + 1
	message.CreatedAt = entity.NextMessageTime(r.now(), c.LastMessage)
	if err := message.Validate(); err != nil {
		return errors.Internal("Refusing to store malformed message", err)
	}

	r.messages[c.ID] = append(r.messages[c.ID], cloneMessage(message))
	c.LastSequence = message.Sequence
	c.LastMessage = message.Snapshot()
	if message.CreatedAt.After(c.UpdatedAt) {
		c.UpdatedAt = message.CreatedAt
	}
	return nil
}

func (r *MemoryChatRepository) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.messages[conversationID]
	out := make([]*entity.Message, 0, len(stored))
	for _, m := range stored {
		out = append(out, cloneMessage(m))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (r *MemoryChatRepository) Latest(ctx context.Context, conversationID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *entity.Message
	for _, m := range r.messages[conversationID] {
		if latest == nil || latest.Before(m) {
			latest = m
		}
	}
	if latest == nil {
		return nil, errors.NotFound("Message", nil)
	}
	return cloneMessage(latest), nil
}
