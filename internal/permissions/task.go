package permissions

import (
	"errors"

	"gorm.io/gorm"

	"github.com/itjee/jwp-pms-v1/internal/models"
)

// TaskEvaluator resolves task access from direct relationships (creator,
// active assignment) or transitively through the parent project.
type TaskEvaluator struct {
	db       *gorm.DB
	projects *ProjectEvaluator
}

func NewTaskEvaluator(db *gorm.DB, projects *ProjectEvaluator) *TaskEvaluator {
	return &TaskEvaluator{db: db, projects: projects}
}

// CanAccess reports whether the user may read or mutate the task. Access is
// the union of direct task relationships and inherited project read access.
// A task with no project and no direct relationship is always denied.
func (e *TaskEvaluator) CanAccess(user *models.User, task *models.Task) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.IsAdmin() {
		return true, nil
	}
	if task.CreatorID == user.ID {
		return true, nil
	}

	var count int64
	err := e.db.Model(&models.TaskAssignment{}).
		Where("task_id = ? AND user_id = ? AND is_active = ?", task.ID, user.ID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	if task.ProjectID == nil {
		return false, nil
	}

	project := task.Project
	if project == nil || project.ID != *task.ProjectID {
		project = &models.Project{}
		if err := e.db.First(project, *task.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
	}

	return e.projects.CanRead(user, project)
}

// AccessibleProjectIDs exposes the project evaluator's pre-resolved set for
// task list filtering.
func (e *TaskEvaluator) AccessibleProjectIDs(user *models.User) ([]uint64, error) {
	return e.projects.AccessibleProjectIDs(user)
}
