package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/vuln-kanban-api/internal/models"
)

var (
	// ErrTaskNotFound is returned when an operation references an unknown task id.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUnknownStatus is returned when a status names none of the five columns.
	ErrUnknownStatus = errors.New("unknown task status")
	// ErrInvalidReorder is returned when a replacement column order is not a
	// permutation of the current one.
	ErrInvalidReorder = errors.New("task order must be a permutation of the column's tasks")
	// ErrLabelNotFound is returned when a label id is not in the catalog.
	ErrLabelNotFound = errors.New("label not found")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when a user with the same email exists.
	ErrDuplicateEmail = errors.New("email already registered")
)

// BoardRepository is the normalized board state of one session owner:
// the task map, the five ordered columns and the label catalog.
type BoardRepository interface {
	// AddTask creates a task with a fresh id and timestamps and appends it to
	// the column of its status.
	AddTask(draft models.TaskDraft) (models.Task, error)

	// UpdateTask merges the non-nil patch fields and refreshes UpdatedAt.
	UpdateTask(id string, patch models.TaskPatch) (models.Task, error)

	// DeleteTask removes the task and its id from its column.
	DeleteTask(id string) (models.Task, error)

	// MoveTask moves a task to newIndex of the status column, clamping the index.
	MoveTask(id string, status models.TaskStatus, newIndex int) (models.Task, error)

	// ReorderColumn replaces a column's task order.
	ReorderColumn(status models.TaskStatus, taskIDs []string) (models.Column, error)

	// FindTask returns a copy of the task.
	FindTask(id string) (models.Task, error)

	// Column returns a copy of the column for status.
	Column(status models.TaskStatus) (models.Column, error)

	// Snapshot returns a consistent copy of the whole board.
	Snapshot() Snapshot

	// Labels returns the label catalog.
	Labels() []models.Label

	// FindLabels resolves label ids to catalog copies, preserving order.
	FindLabels(ids []string) ([]models.Label, error)

	// AddLabel appends a label with a fresh id to the catalog.
	AddLabel(label models.Label) models.Label
}

// Snapshot is a point-in-time copy of a board.
type Snapshot struct {
	Tasks   map[string]models.Task
	Columns []models.Column
	Labels  []models.Label
}

// BoardRegistry hands out one board per owner.
type BoardRegistry interface {
	// Board returns the owner's board, seeding it on first access.
	Board(ownerID string) (BoardRepository, error)

	// Drop discards the owner's board.
	Drop(ownerID string)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// ActivityRepository stores the board audit trail.
type ActivityRepository interface {
	// Create appends an activity entry
	Create(ctx context.Context, activity *models.Activity) error

	// ListByOwner returns the owner's entries, newest first, with the total count
	ListByOwner(ctx context.Context, ownerID string, filter ActivityFilter) ([]models.Activity, int64, error)
}

// ActivityFilter holds filtering options for listing activity
type ActivityFilter struct {
	TaskID string
	Offset int
	Limit  int
}
