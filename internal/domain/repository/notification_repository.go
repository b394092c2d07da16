package repository

import (
	"context"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
)

type NotificationRepository interface {
	// Create is idempotent on the notification id.
	Create(ctx context.Context, notification *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error)
	MarkRead(ctx context.Context, id string) error
}
