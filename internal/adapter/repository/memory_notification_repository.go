package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/repository"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
)

type MemoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*entity.Notification
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{notifications: make(map[string]*entity.Notification)}
}

var _ repository.NotificationRepository = (*MemoryNotificationRepository)(nil)

func (r *MemoryNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	if err := notification.Validate(); err != nil {
		return errors.Internal("Refusing to store malformed notification", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.notifications[notification.ID]; exists {
		return nil
	}
	r.notifications[notification.ID] = cloneNotification(notification)
	return nil
}

func (r *MemoryNotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, errors.NotFound("Notification", nil)
	}
	return cloneNotification(n), nil
}

func (r *MemoryNotificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	r.mu.RLock()
	var all []*entity.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			all = append(all, cloneNotification(n))
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	total := int64(len(all))
	start := offset
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return all[start:end], total, nil
}

func (r *MemoryNotificationRepository) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return errors.NotFound("Notification", nil)
	}
	n.IsRead = true
	return nil
}
