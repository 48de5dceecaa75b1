package dto

import (
	"time"

	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"github.com/yukikurage/vuln-kanban-api/internal/services"
	"github.com/yukikurage/vuln-kanban-api/internal/utils"
)

// ColumnDTO is a board column with its visible tasks
type ColumnDTO struct {
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	Status  models.TaskStatus `json:"status"`
	Color   string            `json:"color"`
	TaskIDs []string          `json:"task_ids"`
	Tasks   []TaskDTO         `json:"tasks"`
	Count   int               `json:"count"`
	Total   int               `json:"total"`
}

// ViewCriteriaDTO mirrors the search, label and sort settings
type ViewCriteriaDTO struct {
	SearchTerm     string             `json:"search_term"`
	SelectedLabels []string           `json:"selected_labels"`
	SortBy         services.SortField `json:"sort_by"`
	SortOrder      services.SortOrder `json:"sort_order"`
}

// BoardDTO is the filtered board
type BoardDTO struct {
	Columns  []ColumnDTO     `json:"columns"`
	Labels   []LabelDTO      `json:"labels"`
	Criteria ViewCriteriaDTO `json:"criteria"`
}

// ColumnOrderDTO is a column after a reorder
type ColumnOrderDTO struct {
	ID      string            `json:"id"`
	Status  models.TaskStatus `json:"status"`
	TaskIDs []string          `json:"task_ids"`
}

// DragDTO reports the drag state and what the last event changed
type DragDTO struct {
	Phase        services.DragPhase  `json:"phase"`
	ActiveTaskID string              `json:"active_task_id,omitempty"`
	OverID       string              `json:"over_id,omitempty"`
	Action       services.DragAction `json:"action,omitempty"`
	Task         *TaskDTO            `json:"task,omitempty"`
	Column       *ColumnOrderDTO     `json:"column,omitempty"`
}

// ActivityDTO is one audit trail entry
type ActivityDTO struct {
	ID         uint64                `json:"id"`
	TaskID     string                `json:"task_id,omitempty"`
	Action     models.ActivityAction `json:"action"`
	FromStatus models.TaskStatus     `json:"from_status,omitempty"`
	ToStatus   models.TaskStatus     `json:"to_status,omitempty"`
	Detail     string                `json:"detail,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

// ActivityListResponse is a page of activity entries
type ActivityListResponse struct {
	Activities []ActivityDTO            `json:"activities"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToViewCriteriaDTO converts view criteria
func ToViewCriteriaDTO(c services.ViewCriteria) ViewCriteriaDTO {
	selected := c.SelectedLabels
	if selected == nil {
		selected = []string{}
	}
	return ViewCriteriaDTO{
		SearchTerm:     c.SearchTerm,
		SelectedLabels: selected,
		SortBy:         c.SortBy,
		SortOrder:      c.SortOrder,
	}
}

// ToBoardDTO converts a board view
func ToBoardDTO(view services.BoardView) BoardDTO {
	columns := make([]ColumnDTO, len(view.Columns))
	for i, cv := range view.Columns {
		tasks := make([]TaskDTO, len(cv.Tasks))
		ids := make([]string, len(cv.Tasks))
		for j, t := range cv.Tasks {
			tasks[j] = ToTaskDTO(t)
			ids[j] = t.ID
		}
		columns[i] = ColumnDTO{
			ID:      cv.Column.ID,
			Title:   cv.Column.Title,
			Status:  cv.Column.Status,
			Color:   cv.Column.Color,
			TaskIDs: ids,
			Tasks:   tasks,
			Count:   len(tasks),
			Total:   cv.Total,
		}
	}

	return BoardDTO{
		Columns:  columns,
		Labels:   ToLabelDTOs(view.Labels),
		Criteria: ToViewCriteriaDTO(view.Criteria),
	}
}

// ToColumnOrderDTO converts a column
func ToColumnOrderDTO(col models.Column) ColumnOrderDTO {
	return ColumnOrderDTO{
		ID:      col.ID,
		Status:  col.Status,
		TaskIDs: append([]string{}, col.TaskIDs...),
	}
}

// ToDragDTO converts a drag outcome
func ToDragDTO(outcome services.DragOutcome) DragDTO {
	out := DragDTO{
		Phase:        outcome.State.Phase,
		ActiveTaskID: outcome.State.ActiveTaskID,
		OverID:       outcome.State.OverID,
		Action:       outcome.Action,
	}
	if outcome.Task != nil {
		task := ToTaskDTO(*outcome.Task)
		out.Task = &task
	}
	if outcome.Column != nil {
		col := ToColumnOrderDTO(*outcome.Column)
		out.Column = &col
	}
	return out
}

// ToActivityListResponse converts a page of activity
func ToActivityListResponse(entries []models.Activity, params utils.PaginationParams, total int64) ActivityListResponse {
	items := make([]ActivityDTO, len(entries))
	for i, a := range entries {
		items[i] = ActivityDTO{
			ID:         a.ID,
			TaskID:     a.TaskID,
			Action:     a.Action,
			FromStatus: a.FromStatus,
			ToStatus:   a.ToStatus,
			Detail:     a.Detail,
			CreatedAt:  a.CreatedAt,
		}
	}
	return ActivityListResponse{
		Activities: items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}
