package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/repository"
	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/queue"
)

var interestPayload = NotificationPayload{
	Type:     "crop_interest",
	Title:    "New interest in your listing",
	Message:  "Priya Sharma is interested in your crop listing 77.",
	Metadata: map[string]string{"listingRef": "crop:77"},
}

func TestStoreNotificationSink_PersistsInBackground(t *testing.T) {
	repo := repository.NewMemoryNotificationRepository()
	sink := NewStoreNotificationSink(repo, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	id := sink.Emit(ctx, "farmer", interestPayload)
	// request context ends before delivery completes
	cancel()
	sink.Flush()

	require.NotEmpty(t, id)
	n, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "farmer", n.UserID)
	assert.Equal(t, "crop_interest", n.Type)
	assert.False(t, n.IsRead)
	assert.Equal(t, "crop:77", n.Metadata["listingRef"])
}

type recordingQueue struct {
	mu    sync.Mutex
	tasks []queue.Task
	opts  []queue.EnqueueOption
}

func (q *recordingQueue) Enqueue(ctx context.Context, t queue.Task, opts ...queue.EnqueueOption) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
	q.opts = append(q.opts, opts...)
	return opts[0].TaskID, nil
}

func (q *recordingQueue) Close() error { return nil }

func TestQueueNotificationSink_EnqueuesWithNotificationID(t *testing.T) {
	q := &recordingQueue{}
	sink := NewQueueNotificationSink(q, time.Second)

	id := sink.Emit(context.Background(), "farmer", interestPayload)
	sink.Flush()

	require.Len(t, q.tasks, 1)
	assert.Equal(t, NotificationTaskType, q.tasks[0].Type)
	assert.Equal(t, id, q.opts[0].TaskID)
	assert.Equal(t, NotificationQueue, q.opts[0].Queue)

	var n entity.Notification
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload, &n))
	assert.Equal(t, id, n.ID)
	assert.Equal(t, "farmer", n.UserID)
}

func TestNotificationDeliveryHandler_Idempotent(t *testing.T) {
	repo := repository.NewMemoryNotificationRepository()
	handle := NotificationDeliveryHandler(repo)

	body, err := json.Marshal(&entity.Notification{
		ID:        "n-1",
		UserID:    "farmer",
		Type:      "crop_interest",
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	task := queue.Task{Type: NotificationTaskType, Payload: body}

	require.NoError(t, handle(context.Background(), task))
	require.NoError(t, handle(context.Background(), task))

	items, total, err := repo.ListByUser(context.Background(), "farmer", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, items, 1)
}

func TestNotificationDeliveryHandler_BadPayloads(t *testing.T) {
	handle := NotificationDeliveryHandler(repository.NewMemoryNotificationRepository())

	err := handle(context.Background(), queue.Task{Type: NotificationTaskType, Payload: []byte("{")})
	assert.Error(t, err)

	invalid, _ := json.Marshal(&entity.Notification{ID: "n-2"})
	assert.NoError(t, handle(context.Background(), queue.Task{Type: NotificationTaskType, Payload: invalid}))
}
