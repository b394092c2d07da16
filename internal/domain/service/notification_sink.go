package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/repository"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/metrics"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/queue"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
)

const (
	// NotificationTaskType is the queue task that persists a notification.
	NotificationTaskType = "notification:deliver"
	NotificationQueue    = "notifications"
)

type NotificationPayload struct {
	Type     string
	Title    string
	Message  string
	Metadata map[string]string
}

// NotificationSink delivers notifications fire-and-forget. Emit returns the
// id assigned to the notification without waiting for delivery.
type NotificationSink interface {
	Emit(ctx context.Context, userID string, payload NotificationPayload) string
}

func newNotification(userID string, payload NotificationPayload, now time.Time) *entity.Notification {
	return &entity.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      payload.Type,
		Title:     payload.Title,
		Message:   payload.Message,
		Metadata:  payload.Metadata,
		IsRead:    false,
		CreatedAt: now.UTC(),
	}
}

// StoreNotificationSink persists notifications from a background goroutine.
type StoreNotificationSink struct {
	repo    repository.NotificationRepository
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewStoreNotificationSink(repo repository.NotificationRepository, timeout time.Duration) *StoreNotificationSink {
	return &StoreNotificationSink{repo: repo, timeout: timeout}
}

func (s *StoreNotificationSink) Emit(ctx context.Context, userID string, payload NotificationPayload) string {
	n := newNotification(userID, payload, time.Now())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		if err := s.repo.Create(deliverCtx, n); err != nil {
			metrics.NotificationsEmitted.WithLabelValues("store", "error").Inc()
			logger.Warn("NotificationSink: failed to store notification %s for user %s: %v", n.ID, userID, err)
			return
		}
		metrics.NotificationsEmitted.WithLabelValues("store", "ok").Inc()
	}()

	return n.ID
}

// Flush waits for in-flight deliveries. Called on shutdown.
func (s *StoreNotificationSink) Flush() {
	s.wg.Wait()
}

// QueueNotificationSink hands notifications to the background worker.
type QueueNotificationSink struct {
	client  queue.Client
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewQueueNotificationSink(client queue.Client, timeout time.Duration) *QueueNotificationSink {
	return &QueueNotificationSink{client: client, timeout: timeout}
}

func (s *QueueNotificationSink) Emit(ctx context.Context, userID string, payload NotificationPayload) string {
	n := newNotification(userID, payload, time.Now())

	body, err := json.Marshal(n)
	if err != nil {
		metrics.NotificationsEmitted.WithLabelValues("queue", "error").Inc()
		logger.Error("NotificationSink: failed to encode notification %s: %v", n.ID, err)
		return n.ID
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		_, err := s.client.Enqueue(enqueueCtx, queue.Task{Type: NotificationTaskType, Payload: body}, queue.EnqueueOption{
			TaskID:   n.ID,
			Queue:    NotificationQueue,
			MaxRetry: 10,
		})
		if err != nil {
			metrics.NotificationsEmitted.WithLabelValues("queue", "error").Inc()
			logger.Warn("NotificationSink: failed to enqueue notification %s for user %s: %v", n.ID, userID, err)
			return
		}
		metrics.NotificationsEmitted.WithLabelValues("queue", "ok").Inc()
	}()

	return n.ID
}

func (s *QueueNotificationSink) Flush() {
	s.wg.Wait()
}

// NotificationDeliveryHandler persists queued notifications. Create is
// idempotent on the id, so redelivered tasks are harmless.
func NotificationDeliveryHandler(repo repository.NotificationRepository) queue.Handler {
	return func(ctx context.Context, task queue.Task) error {
		var n entity.Notification
		if err := json.Unmarshal(task.Payload, &n); err != nil {
			return fmt.Errorf("decode notification task: %w", err)
		}
		if err := n.Validate(); err != nil {
			// malformed payloads never become valid, do not retry
			logger.Error("NotificationDelivery: dropping invalid notification: %v", err)
			return nil
		}
		return repo.Create(ctx, &n)
	}
}
