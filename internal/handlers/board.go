package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/vuln-kanban-api/internal/dto"
	apierrors "github.com/yukikurage/vuln-kanban-api/internal/errors"
	"github.com/yukikurage/vuln-kanban-api/internal/middleware"
	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"github.com/yukikurage/vuln-kanban-api/internal/repository"
	"github.com/yukikurage/vuln-kanban-api/internal/services"
	"github.com/yukikurage/vuln-kanban-api/internal/utils"
)

// BoardHandler serves the filtered board, saved view criteria, labels and
// the activity trail.
type BoardHandler struct {
	boardService *services.BoardService
}

func NewBoardHandler(boardService *services.BoardService) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
	}
}

// GetBoard returns every column with the tasks that pass the view criteria
func (h *BoardHandler) GetBoard(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	criteria, err := queryCriteria(c, sessionCriteria(sessions.Default(c)))
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	view, err := h.boardService.GetBoard(userID, criteria)
	if err != nil {
		respondBoardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardDTO(*view))
}

// SaveView stores search, label and sort settings for later board reads
func (h *BoardHandler) SaveView(c *gin.Context) {
	type SaveViewRequest struct {
		SearchTerm     string   `json:"search_term"`
		SelectedLabels []string `json:"selected_labels"`
		SortBy         string   `json:"sort_by" binding:"omitempty,oneof=date severity title"`
		SortOrder      string   `json:"sort_order" binding:"omitempty,oneof=asc desc"`
	}

	var req SaveViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	criteria := services.DefaultViewCriteria()
	criteria.SearchTerm = req.SearchTerm
	if req.SelectedLabels != nil {
		criteria.SelectedLabels = req.SelectedLabels
	}
	if req.SortBy != "" {
		criteria.SortBy = services.SortField(req.SortBy)
	}
	if req.SortOrder != "" {
		criteria.SortOrder = services.SortOrder(req.SortOrder)
	}

	if err := saveSessionCriteria(sessions.Default(c), criteria); err != nil {
		apierrors.InternalError(c, "Failed to save view")
		return
	}

	c.JSON(http.StatusOK, dto.ToViewCriteriaDTO(criteria))
}

// ResetView drops the saved view settings
func (h *BoardHandler) ResetView(c *gin.Context) {
	if err := clearSessionCriteria(sessions.Default(c)); err != nil {
		apierrors.InternalError(c, "Failed to reset view")
		return
	}

	c.JSON(http.StatusOK, dto.ToViewCriteriaDTO(services.DefaultViewCriteria()))
}

// ListLabels returns the label catalog
func (h *BoardHandler) ListLabels(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	labels, err := h.boardService.Labels(userID)
	if err != nil {
		respondBoardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"labels": dto.ToLabelDTOs(labels),
	})
}

// CreateLabel appends a label to the catalog
func (h *BoardHandler) CreateLabel(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateLabelRequest struct {
		Name  string           `json:"name" binding:"required,max=50"`
		Color string           `json:"color" binding:"required,hexcolor"`
		Type  models.LabelType `json:"type" binding:"required,oneof=severity category source"`
	}

	var req CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	label, err := h.boardService.AddLabel(c.Request.Context(), userID, services.AddLabelInput{
		Name:  req.Name,
		Color: req.Color,
		Type:  req.Type,
	})
	if err != nil {
		respondBoardError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToLabelDTO(*label))
}

// ListActivity returns the caller's board activity, newest first
func (h *BoardHandler) ListActivity(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	entries, total, err := h.boardService.ListActivity(c.Request.Context(), userID, repository.ActivityFilter{
		TaskID: c.Query("task_id"),
		Offset: params.Offset,
		Limit:  params.Limit,
	})
	if err != nil {
		respondBoardError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToActivityListResponse(entries, params, total))
}

func respondBoardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidSortOption):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrLabelNameRequired):
		apierrors.FieldInvalid(c, "name", err.Error())
	case errors.Is(err, services.ErrInvalidLabelColor):
		apierrors.FieldInvalid(c, "color", err.Error())
	case errors.Is(err, services.ErrInvalidLabelType):
		apierrors.FieldInvalid(c, "type", err.Error())
	case errors.Is(err, services.ErrActivityLogDisabled):
		apierrors.ServiceUnavailable(c, "Activity log is not enabled. Please set ACTIVITY_DB_DRIVER.")
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
