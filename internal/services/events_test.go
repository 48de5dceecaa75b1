package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/vuln-kanban-api/internal/models"
)

func TestRedisEventPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "board-events")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	publisher := NewRedisEventPublisher(client, "board-events")
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	err = publisher.Publish(ctx, BoardEvent{
		Type:       models.ActivityTaskMoved,
		OwnerID:    testOwner,
		TaskID:     "task-1",
		FromStatus: models.TaskStatusDraft,
		ToStatus:   models.TaskStatusSolved,
		OccurredAt: at,
	})
	require.NoError(t, err)

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "board-events", msg.Channel)

	var got BoardEvent
	require.NoError(t, sonic.UnmarshalString(msg.Payload, &got))
	assert.Equal(t, models.ActivityTaskMoved, got.Type)
	assert.Equal(t, "task-1", got.TaskID)
	assert.Equal(t, models.TaskStatusSolved, got.ToStatus)
	assert.True(t, at.Equal(got.OccurredAt))
}

func TestRedisEventPublisher_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	err := NewRedisEventPublisher(client, "board-events").Publish(context.Background(), BoardEvent{Type: models.ActivityTaskCreated})
	assert.ErrorContains(t, err, "publish board event")
}

func TestChangeRecorder_NilIsSafe(t *testing.T) {
	var r *ChangeRecorder
	assert.NotPanics(t, func() {
		r.Record(context.Background(), Change{OwnerID: testOwner})
	})
}

func TestChangeRecorder_Record(t *testing.T) {
	env := newTestEnv(t)

	env.recorder.Record(context.Background(), Change{
		OwnerID: testOwner,
		TaskID:  "task-9",
		Action:  models.ActivityTaskMoved,
		From:    models.TaskStatusNew,
		To:      models.TaskStatusSolved,
		Detail:  "index 0",
	})

	require.Len(t, env.activity.entries, 1)
	entry := env.activity.entries[0]
	assert.Equal(t, "task-9", entry.TaskID)
	assert.Equal(t, models.TaskStatusNew, entry.FromStatus)
	assert.Equal(t, "index 0", entry.Detail)
	assert.False(t, entry.CreatedAt.IsZero())

	require.Len(t, env.publisher.events, 1)
	assert.Equal(t, entry.CreatedAt, env.publisher.events[0].OccurredAt)
}

func TestChangeRecorder_WithoutActivityLog(t *testing.T) {
	publisher := &recordingPublisher{}
	r := NewChangeRecorder(nil, publisher, nil)

	r.Record(context.Background(), Change{OwnerID: testOwner, Action: models.ActivityTaskCreated})
	assert.Len(t, publisher.events, 1)
}
