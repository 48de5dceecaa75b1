package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/yukikurage/vuln-kanban-api/internal/constants"
	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"github.com/yukikurage/vuln-kanban-api/internal/repository"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrDescriptionRequired    = errors.New("description is required")
	ErrInvalidSeverity        = errors.New("severity must be between 0 and 10")
	ErrInvalidStatus          = errors.New("unknown task status")
	ErrInvalidReorder         = errors.New("task order must contain exactly the column's tasks")
	ErrLabelNotFound          = errors.New("label not found")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any findings")
	ErrAINoValidTasks         = errors.New("no valid findings could be created from AI output")
	ErrTextRequired           = errors.New("text is required")
)

// TaskService handles task business logic on the caller's board
type TaskService struct {
	boards    repository.BoardRegistry
	recorder  *ChangeRecorder
	extractor FindingExtractor
}

// NewTaskService creates a new TaskService. extractor may be nil.
func NewTaskService(boards repository.BoardRegistry, recorder *ChangeRecorder, extractor FindingExtractor) *TaskService {
	return &TaskService{
		boards:    boards,
		recorder:  recorder,
		extractor: extractor,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Severity    float64
	LabelIDs    []string
	Assignee    *string
	Target      *string
}

// UpdateTaskInput represents input for updating a task. Nil fields are kept.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Severity    *float64
	LabelIDs    *[]string
	Assignee    *string
	Target      *string
}

// GetTask returns a task from the owner's board
func (s *TaskService) GetTask(ownerID, taskID string) (*models.Task, error) {
	board, err := s.board(ownerID)
	if err != nil {
		return nil, err
	}
	task, err := board.FindTask(taskID)
	if err != nil {
		return nil, mapBoardError(err)
	}
	return &task, nil
}

// CreateTask validates the input and adds the task at the end of its column
func (s *TaskService) CreateTask(ctx context.Context, ownerID string, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if err := validateSeverity(input.Severity); err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = models.TaskStatusDraft
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	board, err := s.board(ownerID)
	if err != nil {
		return nil, err
	}
	labels, err := board.FindLabels(uniqueStrings(input.LabelIDs))
	if err != nil {
		return nil, mapBoardError(err)
	}

	task, err := board.AddTask(models.TaskDraft{
		Title:       title,
		Description: description,
		Status:      input.Status,
		Severity:    input.Severity,
		Labels:      labels,
		Assignee:    trimOptional(input.Assignee),
		Target:      trimOptional(input.Target),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", mapBoardError(err))
	}

	s.recorder.Record(ctx, Change{
		OwnerID: ownerID,
		TaskID:  task.ID,
		Action:  models.ActivityTaskCreated,
		To:      task.Status,
		Detail:  task.Title,
		Data:    task,
	})
	return &task, nil
}

// UpdateTask merges the provided fields into an existing task
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID string, input UpdateTaskInput) (*models.Task, error) {
	patch := models.TaskPatch{
		Status:   input.Status,
		Severity: input.Severity,
		Assignee: trimOptional(input.Assignee),
		Target:   trimOptional(input.Target),
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		patch.Title = &title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, ErrDescriptionRequired
		}
		patch.Description = &description
	}
	if input.Severity != nil {
		if err := validateSeverity(*input.Severity); err != nil {
			return nil, err
		}
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	board, err := s.board(ownerID)
	if err != nil {
		return nil, err
	}
	before, err := board.FindTask(taskID)
	if err != nil {
		return nil, mapBoardError(err)
	}
	if input.LabelIDs != nil {
		labels, err := board.FindLabels(uniqueStrings(*input.LabelIDs))
		if err != nil {
			return nil, mapBoardError(err)
		}
		patch.Labels = &labels
	}

	task, err := board.UpdateTask(taskID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", mapBoardError(err))
	}

	s.recorder.Record(ctx, Change{
		OwnerID: ownerID,
		TaskID:  task.ID,
		Action:  models.ActivityTaskUpdated,
		From:    before.Status,
		To:      task.Status,
		Data:    task,
	})
	return &task, nil
}

// DeleteTask removes a task and its column entry
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	board, err := s.board(ownerID)
	if err != nil {
		return err
	}
	task, err := board.DeleteTask(taskID)
	if err != nil {
		return mapBoardError(err)
	}

	s.recorder.Record(ctx, Change{
		OwnerID: ownerID,
		TaskID:  task.ID,
		Action:  models.ActivityTaskDeleted,
		From:    task.Status,
		Detail:  task.Title,
	})
	return nil
}

// MoveTask moves a task to index of the status column
func (s *TaskService) MoveTask(ctx context.Context, ownerID, taskID string, status models.TaskStatus, index int) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	board, err := s.board(ownerID)
	if err != nil {
		return nil, err
	}
	before, err := board.FindTask(taskID)
	if err != nil {
		return nil, mapBoardError(err)
	}

	task, err := board.MoveTask(taskID, status, index)
	if err != nil {
		return nil, mapBoardError(err)
	}

	s.recorder.Record(ctx, Change{
		OwnerID: ownerID,
		TaskID:  task.ID,
		Action:  models.ActivityTaskMoved,
		From:    before.Status,
		To:      task.Status,
		Detail:  fmt.Sprintf("index %d", index),
	})
	return &task, nil
}

// ReorderColumn replaces a column's order with a permutation of its tasks
func (s *TaskService) ReorderColumn(ctx context.Context, ownerID string, status models.TaskStatus, taskIDs []string) (*models.Column, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	board, err := s.board(ownerID)
	if err != nil {
		return nil, err
	}

	col, err := board.ReorderColumn(status, taskIDs)
	if err != nil {
		return nil, mapBoardError(err)
	}

	s.recorder.Record(ctx, Change{
		OwnerID: ownerID,
		Action:  models.ActivityTaskReordered,
		From:    status,
		To:      status,
		Detail:  strings.Join(col.TaskIDs, ","),
	})
	return &col, nil
}

// GenerateTasks extracts draft findings from free-form report text
func (s *TaskService) GenerateTasks(ctx context.Context, text string) ([]GeneratedFinding, error) {
	if s.extractor == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrTextRequired
	}

	findings, err := s.extractor.ExtractFindings(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate findings: %w", err)
	}
	if len(findings) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(findings) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many findings (max %d)", constants.MaxAIGeneratedTasks)
	}

	valid := make([]GeneratedFinding, 0, len(findings))
	for _, f := range findings {
		f.Title = strings.TrimSpace(f.Title)
		if f.Title == "" {
			continue
		}
		if validateSeverity(f.Severity) != nil {
			continue
		}
		valid = append(valid, f)
	}
	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}
	return valid, nil
}

func (s *TaskService) board(ownerID string) (repository.BoardRepository, error) {
	board, err := s.boards.Board(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load board: %w", err)
	}
	return board, nil
}

// mapBoardError translates repository sentinels into service sentinels
func mapBoardError(err error) error {
	switch {
	case errors.Is(err, repository.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, repository.ErrUnknownStatus):
		return ErrInvalidStatus
	case errors.Is(err, repository.ErrInvalidReorder):
		return ErrInvalidReorder
	case errors.Is(err, repository.ErrLabelNotFound):
		return fmt.Errorf("%w: %v", ErrLabelNotFound, err)
	default:
		return err
	}
}

func validateSeverity(severity float64) error {
	if math.IsNaN(severity) || severity < constants.MinSeverity || severity > constants.MaxSeverity {
		return ErrInvalidSeverity
	}
	return nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	return &trimmed
}

// uniqueStrings removes duplicate values, keeping first occurrences
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
