package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/itjee/jwp-pms-v1/internal/constants"
	apierrors "github.com/itjee/jwp-pms-v1/internal/errors"
	"github.com/itjee/jwp-pms-v1/internal/models"
	"github.com/itjee/jwp-pms-v1/internal/permissions"
)

// TaskGate wires the task evaluator into route middleware.
type TaskGate struct {
	db        *gorm.DB
	evaluator *permissions.TaskEvaluator
}

func NewTaskGate(db *gorm.DB, evaluator *permissions.TaskEvaluator) *TaskGate {
	return &TaskGate{db: db, evaluator: evaluator}
}

// RequireAccess loads the task and aborts unless the caller can access it,
// either directly (creator, assignee) or through the parent project.
func (g *TaskGate) RequireAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		user, exists := GetCurrentUser(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var task models.Task
		if err := g.db.Preload("Project").First(&task, taskID).Error; err != nil {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		allowed, err := g.evaluator.CanAccess(user, &task)
		if err != nil {
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}
		if !allowed {
			apierrors.Forbidden(c, "Access denied to this task")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, &task)
		c.Next()
	}
}

// GetTask retrieves the task stashed by RequireAccess.
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}

	task, ok := value.(*models.Task)
	return task, ok
}
