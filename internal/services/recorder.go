package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"github.com/yukikurage/vuln-kanban-api/internal/repository"
)

// Change is a committed board mutation to be logged and published.
type Change struct {
	OwnerID string
	TaskID  string
	Action  models.ActivityAction
	From    models.TaskStatus
	To      models.TaskStatus
	Detail  string
	Data    any
}

// ChangeRecorder writes changes to the activity log and the event publisher.
// Both sinks are optional. Failures are logged; the board mutation has
// already happened and is never undone.
type ChangeRecorder struct {
	activity  repository.ActivityRepository
	publisher EventPublisher
	log       *logrus.Logger
	now       func() time.Time
}

// NewChangeRecorder creates a recorder. activity may be nil.
func NewChangeRecorder(activity repository.ActivityRepository, publisher EventPublisher, log *logrus.Logger) *ChangeRecorder {
	if publisher == nil {
		publisher = NoopEventPublisher{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ChangeRecorder{
		activity:  activity,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Record persists and publishes change.
func (r *ChangeRecorder) Record(ctx context.Context, change Change) {
	if r == nil {
		return
	}
	at := r.now().UTC()
	fields := logrus.Fields{
		"owner_id": change.OwnerID,
		"task_id":  change.TaskID,
		"action":   change.Action,
	}
	r.log.WithFields(fields).Debug("board changed")

	if r.activity != nil {
		entry := &models.Activity{
			OwnerID:    change.OwnerID,
			TaskID:     change.TaskID,
			Action:     change.Action,
			FromStatus: change.From,
			ToStatus:   change.To,
			Detail:     change.Detail,
			CreatedAt:  at,
		}
		if err := r.activity.Create(ctx, entry); err != nil {
			r.log.WithFields(fields).WithError(err).Warn("failed to record activity")
		}
	}

	err := r.publisher.Publish(ctx, BoardEvent{
		Type:       change.Action,
		OwnerID:    change.OwnerID,
		TaskID:     change.TaskID,
		FromStatus: change.From,
		ToStatus:   change.To,
		Data:       change.Data,
		OccurredAt: at,
	})
	if err != nil {
		r.log.WithFields(fields).WithError(err).Warn("failed to publish board event")
	}
}
