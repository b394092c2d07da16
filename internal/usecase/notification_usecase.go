package usecase

import (
	"context"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/repository"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
)

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationUseCase(notificationRepo repository.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{notificationRepo: notificationRepo}
}

func (uc *NotificationUseCase) List(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	notifications, total, err := uc.notificationRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if notifications == nil {
		notifications = []*entity.Notification{}
	}
	return notifications, total, nil
}

// MarkRead flags one of the caller's notifications as read.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, notificationID string) error {
	n, err := uc.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return errors.Forbidden("Notification belongs to another user", nil)
	}
	if n.IsRead {
		return nil
	}
	return uc.notificationRepo.MarkRead(ctx, notificationID)
}
