package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/vuln-kanban-api/internal/constants"
	"github.com/yukikurage/vuln-kanban-api/internal/dto"
	apierrors "github.com/yukikurage/vuln-kanban-api/internal/errors"
	"github.com/yukikurage/vuln-kanban-api/internal/middleware"
	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"github.com/yukikurage/vuln-kanban-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// CreateTask creates a new task at the end of its status column
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string            `json:"title" binding:"required"`
		Description string            `json:"description" binding:"required"`
		Status      models.TaskStatus `json:"status"`
		Severity    *float64          `json:"severity" binding:"required,gte=0,lte=10"`
		LabelIDs    []string          `json:"label_ids"`
		Assignee    *string           `json:"assignee"`
		Target      *string           `json:"target"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), userID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Severity:    *req.Severity,
		LabelIDs:    req.LabelIDs,
		Assignee:    req.Assignee,
		Target:      req.Target,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask merges the provided fields into an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type UpdateTaskRequest struct {
		Title       *string            `json:"title"`
		Description *string            `json:"description"`
		Status      *models.TaskStatus `json:"status"`
		Severity    *float64           `json:"severity" binding:"omitempty,gte=0,lte=10"`
		LabelIDs    *[]string          `json:"label_ids"`
		Assignee    *string            `json:"assignee"`
		Target      *string            `json:"target"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), userID, task.ID, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Severity:    req.Severity,
		LabelIDs:    req.LabelIDs,
		Assignee:    req.Assignee,
		Target:      req.Target,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), userID, task.ID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// MoveTask moves a task to a position in a status column
func (h *TaskHandler) MoveTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type MoveTaskRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
		Index  int               `json:"index"`
	}

	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	moved, err := h.taskService.MoveTask(c.Request.Context(), userID, task.ID, req.Status, req.Index)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*moved))
}

// ReorderColumn replaces the task order of a column
func (h *TaskHandler) ReorderColumn(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type ReorderColumnRequest struct {
		TaskIDs []string `json:"task_ids" binding:"required"`
	}

	var req ReorderColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	status := models.TaskStatus(c.Param("status"))
	col, err := h.taskService.ReorderColumn(c.Request.Context(), userID, status, req.TaskIDs)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToColumnOrderDTO(*col))
}

// GenerateTasks drafts findings from report text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	findings, err := h.taskService.GenerateTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GeneratedTasksResponse{
		Tasks: findings,
		Count: len(findings),
	})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.FieldInvalid(c, "title", err.Error())
	case errors.Is(err, services.ErrDescriptionRequired):
		apierrors.FieldInvalid(c, "description", err.Error())
	case errors.Is(err, services.ErrInvalidSeverity):
		apierrors.FieldInvalid(c, "severity", err.Error())
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.FieldInvalid(c, "status", err.Error())
	case errors.Is(err, services.ErrInvalidReorder):
		apierrors.FieldInvalid(c, "task_ids", err.Error())
	case errors.Is(err, services.ErrLabelNotFound):
		apierrors.FieldInvalid(c, "label_ids", err.Error())
	case errors.Is(err, services.ErrTextRequired):
		apierrors.FieldInvalid(c, "text", err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		apierrors.GatewayTimeout(c, "")
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(constants.StatusClientClosedRequest)
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
