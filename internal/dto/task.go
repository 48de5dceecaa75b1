package dto

import (
	"time"

	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"github.com/yukikurage/vuln-kanban-api/internal/services"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LabelDTO represents a label in API responses
type LabelDTO struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Color string           `json:"color"`
	Type  models.LabelType `json:"type"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	Severity    float64           `json:"severity"`
	Labels      []LabelDTO        `json:"labels"`
	Assignee    *string           `json:"assignee,omitempty"`
	Target      *string           `json:"target,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// GeneratedTasksResponse lists AI drafted findings
type GeneratedTasksResponse struct {
	Tasks []services.GeneratedFinding `json:"tasks"`
	Count int                         `json:"count"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}
}

// ToLabelDTO converts a Label model to LabelDTO
func ToLabelDTO(label models.Label) LabelDTO {
	return LabelDTO{
		ID:    label.ID,
		Name:  label.Name,
		Color: label.Color,
		Type:  label.Type,
	}
}

// ToLabelDTOs converts a label slice, never returning nil
func ToLabelDTOs(labels []models.Label) []LabelDTO {
	out := make([]LabelDTO, len(labels))
	for i, l := range labels {
		out[i] = ToLabelDTO(l)
	}
	return out
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Severity:    task.Severity,
		Labels:      ToLabelDTOs(task.Labels),
		Assignee:    task.Assignee,
		Target:      task.Target,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}
