package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"github.com/yukikurage/vuln-kanban-api/internal/repository"
)

var (
	ErrLabelNameRequired   = errors.New("label name is required")
	ErrInvalidLabelColor   = errors.New("label color must be a hex color such as #ef4444")
	ErrInvalidLabelType    = errors.New("label type must be severity, category or source")
	ErrActivityLogDisabled = errors.New("activity log is not enabled")
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// BoardService serves board reads, the label catalog and the activity trail
type BoardService struct {
	boards   repository.BoardRegistry
	activity repository.ActivityRepository
	recorder *ChangeRecorder
}

// NewBoardService creates a new BoardService. activity may be nil when the
// activity log is disabled.
func NewBoardService(boards repository.BoardRegistry, activity repository.ActivityRepository, recorder *ChangeRecorder) *BoardService {
	return &BoardService{
		boards:   boards,
		activity: activity,
		recorder: recorder,
	}
}

// GetBoard returns the owner's board filtered and sorted by criteria
func (s *BoardService) GetBoard(ownerID string, criteria ViewCriteria) (*BoardView, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	board, err := s.boards.Board(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load board: %w", err)
	}
	view := BuildBoardView(board.Snapshot(), criteria)
	return &view, nil
}

// Labels returns the owner's label catalog
func (s *BoardService) Labels(ownerID string) ([]models.Label, error) {
	board, err := s.boards.Board(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load board: %w", err)
	}
	return board.Labels(), nil
}

// AddLabelInput represents input for adding a label to the catalog
type AddLabelInput struct {
	Name  string
	Color string
	Type  models.LabelType
}

// AddLabel appends a label to the owner's catalog
func (s *BoardService) AddLabel(ctx context.Context, ownerID string, input AddLabelInput) (*models.Label, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrLabelNameRequired
	}
	if !hexColorPattern.MatchString(input.Color) {
		return nil, ErrInvalidLabelColor
	}
	if !input.Type.Valid() {
		return nil, ErrInvalidLabelType
	}

	board, err := s.boards.Board(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load board: %w", err)
	}
	label := board.AddLabel(models.Label{
		Name:  name,
		Color: strings.ToLower(input.Color),
		Type:  input.Type,
	})

	s.recorder.Record(ctx, Change{
		OwnerID: ownerID,
		Action:  models.ActivityLabelAdded,
		Detail:  label.Name,
		Data:    label,
	})
	return &label, nil
}

// ListActivity returns a page of the owner's activity, newest first
func (s *BoardService) ListActivity(ctx context.Context, ownerID string, filter repository.ActivityFilter) ([]models.Activity, int64, error) {
	if s.activity == nil {
		return nil, 0, ErrActivityLogDisabled
	}
	entries, total, err := s.activity.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, total, nil
}

// CloseSession discards the owner's board
func (s *BoardService) CloseSession(ownerID string) {
	s.boards.Drop(ownerID)
}
