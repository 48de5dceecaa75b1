package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/vuln-kanban-api/internal/dto"
	apierrors "github.com/yukikurage/vuln-kanban-api/internal/errors"
	"github.com/yukikurage/vuln-kanban-api/internal/middleware"
	"github.com/yukikurage/vuln-kanban-api/internal/services"
)

// DragHandler exposes the drag-and-drop gesture as start, over, end and
// cancel events.
type DragHandler struct {
	dragService *services.DragService
}

func NewDragHandler(dragService *services.DragService) *DragHandler {
	return &DragHandler{
		dragService: dragService,
	}
}

// GetState returns the caller's current drag
func (h *DragHandler) GetState(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	state := h.dragService.State(userID)
	c.JSON(http.StatusOK, dto.ToDragDTO(services.DragOutcome{State: state}))
}

// Start picks up a task
func (h *DragHandler) Start(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type StartRequest struct {
		TaskID string `json:"task_id" binding:"required"`
	}

	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	outcome, err := h.dragService.Start(userID, req.TaskID)
	if err != nil {
		respondDragError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDragDTO(*outcome))
}

// Over reports the pointer entering a column or task
func (h *DragHandler) Over(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type OverRequest struct {
		OverID string `json:"over_id" binding:"required"`
	}

	var req OverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	outcome, err := h.dragService.Over(c.Request.Context(), userID, req.OverID)
	if err != nil {
		respondDragError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDragDTO(*outcome))
}

// End drops the task. An empty over_id means outside any drop target.
func (h *DragHandler) End(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type EndRequest struct {
		OverID string `json:"over_id"`
	}

	var req EndRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BindingError(c, err)
			return
		}
	}

	outcome, err := h.dragService.End(c.Request.Context(), userID, req.OverID)
	if err != nil {
		respondDragError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDragDTO(*outcome))
}

// Cancel abandons the drag
func (h *DragHandler) Cancel(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	state := h.dragService.Cancel(userID)
	c.JSON(http.StatusOK, dto.ToDragDTO(services.DragOutcome{State: state, Action: services.DragActionNone}))
}

func respondDragError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoActiveDrag):
		apierrors.Conflict(c, err.Error())
	default:
		respondTaskError(c, err)
	}
}
