package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/selimcan/tasktracker/internal/constants"
	"github.com/selimcan/tasktracker/internal/database"
	apierrors "github.com/selimcan/tasktracker/internal/errors"
	"github.com/selimcan/tasktracker/internal/models"
	"github.com/selimcan/tasktracker/internal/services"
)

// RequireTaskAccess resolves the task from the URL and runs the
// authorization gate. Existence is checked first: a missing task is
// not-found, a denied actor gets forbidden; the two are never conflated.
func RequireTaskAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskIDStr := c.Param("id")
		taskID, err := strconv.ParseUint(taskIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		actor, exists := GetCurrentUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var task models.Task
		if err := database.GetDB().Preload("User").First(&task, taskID).Error; err != nil {
			apierrors.NotFound(c, "Task not found.")
			c.Abort()
			return
		}

		if !services.CanAccessTask(actor, &task) {
			apierrors.Forbidden(c, "You do not have permission to access this task.")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, &task)
		c.Next()
	}
}

// GetContextTask retrieves the gated task stored by RequireTaskAccess
func GetContextTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := value.(*models.Task)
	return task, ok
}
