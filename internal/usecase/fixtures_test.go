package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/repository"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/service"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
)

type fakeDirectory struct {
	profiles map[string]*entity.UserProfile
}

func newFakeDirectory(profiles ...*entity.UserProfile) *fakeDirectory {
	d := &fakeDirectory{profiles: make(map[string]*entity.UserProfile)}
	for _, p := range profiles {
		d.profiles[p.ID] = p
	}
	return d
}

func (d *fakeDirectory) Lookup(ctx context.Context, userID string) (*entity.UserProfile, error) {
	p, ok := d.profiles[userID]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	cp := *p
	return &cp, nil
}

type emitted struct {
	UserID  string
	Payload service.NotificationPayload
}

type recordingSink struct {
	mu    sync.Mutex
	calls []emitted
}

func (s *recordingSink) Emit(ctx context.Context, userID string, payload service.NotificationPayload) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, emitted{UserID: userID, Payload: payload})
	return "notif-" + userID
}

func (s *recordingSink) emitted() []emitted {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]emitted(nil), s.calls...)
}

type fixture struct {
	repo          *repository.MemoryChatRepository
	directory     *fakeDirectory
	sink          *recordingSink
	conversations *ConversationUseCase
	messages      *MessageUseCase
	summaries     *SummaryUseCase
	interests     *InterestUseCase
}

func newFixture() *fixture {
	repo := repository.NewMemoryChatRepository()
	directory := newFakeDirectory(
		&entity.UserProfile{ID: "farmer", Name: "Rajesh Kumar", Role: entity.RoleFarmer},
		&entity.UserProfile{ID: "buyer", Name: "Priya Sharma", Role: entity.RoleBuyer},
		&entity.UserProfile{ID: "u1", Name: "User One"},
		&entity.UserProfile{ID: "u2", Name: "User Two"},
	)
	sink := &recordingSink{}

	conversations := NewConversationUseCase(repo, directory)
	messages := NewMessageUseCase(repo)
	return &fixture{
		repo:          repo,
		directory:     directory,
		sink:          sink,
		conversations: conversations,
		messages:      messages,
		summaries:     NewSummaryUseCase(repo, directory),
		interests:     NewInterestUseCase(conversations, messages, directory, sink),
	}
}

// steppingClock returns start, start+step, start+2*step, ...
func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(step)
		return t
	}
}
