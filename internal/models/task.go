package models

import "time"

type TaskStatus string

const (
	TaskStatusDraft       TaskStatus = "draft"
	TaskStatusUnsolved    TaskStatus = "unsolved"
	TaskStatusUnderReview TaskStatus = "under-review"
	TaskStatusSolved      TaskStatus = "solved"
	TaskStatusNew         TaskStatus = "new"
)

// TaskStatuses lists every status in board display order.
var TaskStatuses = []TaskStatus{
	TaskStatusDraft,
	TaskStatusUnsolved,
	TaskStatusUnderReview,
	TaskStatusSolved,
	TaskStatusNew,
}

// Valid reports whether s is one of the five board statuses.
func (s TaskStatus) Valid() bool {
	for _, status := range TaskStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Task is a vulnerability ticket on the board.
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Status      TaskStatus `json:"status" yaml:"status"`
	Severity    float64    `json:"severity" yaml:"severity"`
	Labels      []Label    `json:"labels" yaml:"labels"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
	Assignee    *string    `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Target      *string    `json:"target,omitempty" yaml:"target,omitempty"`
}

// Clone returns a deep copy so callers cannot alias board state.
func (t Task) Clone() Task {
	c := t
	if t.Labels != nil {
		c.Labels = append(make([]Label, 0, len(t.Labels)), t.Labels...)
	}
	if t.Assignee != nil {
		a := *t.Assignee
		c.Assignee = &a
	}
	if t.Target != nil {
		tg := *t.Target
		c.Target = &tg
	}
	return c
}

// TaskDraft carries the caller-supplied fields of a new task.
type TaskDraft struct {
	Title       string
	Description string
	Status      TaskStatus
	Severity    float64
	Labels      []Label
	Assignee    *string
	Target      *string
}

// TaskPatch holds the fields to merge into an existing task. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Severity    *float64
	Labels      *[]Label
	Assignee    *string
	Target      *string
}
