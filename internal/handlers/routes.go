package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/vuln-kanban-api/internal/middleware"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth  *AuthHandler
	Task  *TaskHandler
	Board *BoardHandler
	Drag  *DragHandler

	// Tasks resolves :id for task routes.
	Tasks middleware.TaskFinder
}

// RegisterRoutes mounts the health check and the /api routes on r. Session
// middleware must already be installed.
func RegisterRoutes(r gin.IRouter, h Handlers) {
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Vulnerability Kanban API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", middleware.RequireAuth(), h.Auth.GetCurrentUser)
		}

		protected := api.Group("")
		protected.Use(middleware.RequireAuth())

		board := protected.Group("/board")
		{
			board.GET("", h.Board.GetBoard)
			board.PUT("/view", h.Board.SaveView)
			board.DELETE("/view", h.Board.ResetView)
		}

		labels := protected.Group("/labels")
		{
			labels.GET("", h.Board.ListLabels)
			labels.POST("", h.Board.CreateLabel)
		}

		protected.GET("/activity", h.Board.ListActivity)
		protected.PUT("/columns/:status/order", h.Task.ReorderColumn)

		taskAccess := middleware.RequireTaskAccess(h.Tasks)
		tasks := protected.Group("/tasks")
		{
			tasks.POST("", h.Task.CreateTask)
			tasks.POST("/generate", h.Task.GenerateTasks)
			tasks.GET("/:id", taskAccess, h.Task.GetTask)
			tasks.PATCH("/:id", taskAccess, h.Task.UpdateTask)
			tasks.DELETE("/:id", taskAccess, h.Task.DeleteTask)
			tasks.POST("/:id/move", taskAccess, h.Task.MoveTask)
		}

		drag := protected.Group("/drag")
		{
			drag.GET("", h.Drag.GetState)
			drag.POST("/start", h.Drag.Start)
			drag.POST("/over", h.Drag.Over)
			drag.POST("/end", h.Drag.End)
			drag.POST("/cancel", h.Drag.Cancel)
		}
	}
}
