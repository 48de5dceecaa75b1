package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/vuln-kanban-api/internal/constants"
	apierrors "github.com/yukikurage/vuln-kanban-api/internal/errors"
	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"github.com/yukikurage/vuln-kanban-api/internal/services"
)

// TaskFinder looks up a task on an owner's board
type TaskFinder interface {
	GetTask(ownerID, taskID string) (*models.Task, error)
}

// RequireTaskAccess loads the :id task from the caller's board into the
// context. Tasks live on per-owner boards, so an id from another session
// is simply not found.
func RequireTaskAccess(tasks TaskFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, err := tasks.GetTask(userID, c.Param("id"))
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
			} else {
				apierrors.InternalError(c, "Failed to load task")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, *task)
		c.Next()
	}
}

// GetTask retrieves the task stored by RequireTaskAccess
func GetTask(c *gin.Context) (models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := v.(models.Task)
	return task, ok
}
