package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/repository"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
)

type firestoreNotificationRepository struct {
	client *firestore.Client
}

func NewFirestoreNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &firestoreNotificationRepository{client: client}
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	if err := notification.Validate(); err != nil {
		return errors.Internal("Refusing to store malformed notification", err)
	}
	_, err := r.client.Collection("notifications").Doc(notification.ID).Create(ctx, notification)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return storageFault("Failed to create notification", err)
	}
	return nil
}

func (r *firestoreNotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	doc, err := r.client.Collection("notifications").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Notification", err)
		}
		return nil, storageFault("Failed to get notification", err)
	}

	var n entity.Notification
	if err := doc.DataTo(&n); err != nil {
		return nil, errors.Internal("Failed to parse notification data", err)
	}
	return &n, nil
}

func (r *firestoreNotificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	query := r.client.Collection("notifications").Where("userId", "==", userID)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, storageFault("Failed to count notifications", err)
	}
	total := int64(len(countDocs))

	query = query.OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []*entity.Notification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, storageFault("Failed to iterate notifications", err)
		}
		var n entity.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, 0, errors.Internal("Failed to parse notification data", err)
		}
		out = append(out, &n)
	}
	return out, total, nil
}

func (r *firestoreNotificationRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.client.Collection("notifications").Doc(id).Update(ctx, []firestore.Update{
		{Path: "isRead", Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Notification", err)
		}
		return storageFault("Failed to mark notification read", err)
	}
	return nil
}
