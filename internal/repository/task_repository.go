package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/itjee/jwp-pms-v1/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks matching the filter. Visibility is the accessible
// project set plus the caller's direct relationships (creator or active
// assignee), matching what the task evaluator would allow per row.
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if !filter.Admin {
		assignmentSub := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", filter.UserID).
			Where("task_assignments.is_active = ?", true)

		if len(filter.ProjectIDs) > 0 {
			query = query.Where(
				"tasks.project_id IN ? OR tasks.creator_id = ? OR EXISTS (?)",
				filter.ProjectIDs, filter.UserID, assignmentSub,
			)
		} else {
			query = query.Where(
				"tasks.creator_id = ? OR EXISTS (?)",
				filter.UserID, assignmentSub,
			)
		}
	}

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.AssignedTo != nil {
		assignedSub := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", *filter.AssignedTo).
			Where("task_assignments.is_active = ?", true)
		query = query.Where("EXISTS (?)", assignedSub)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueDateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.SortByDueDate {
		listQuery = listQuery.Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC")
	} else {
		listQuery = listQuery.Order("tasks.created_at DESC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.Preload("Creator").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete soft deletes a task and deactivates its assignments
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TaskAssignment{}).
			Where("task_id = ?", id).
			Update("is_active", false).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// Assign adds an assignment row, reactivating an inactive row for the same
// (task, user) pair instead of duplicating it.
func (r *GormTaskRepository) Assign(taskID, userID, assignedBy uint64) error {
	assignment := models.TaskAssignment{
		TaskID:     taskID,
		UserID:     userID,
		AssignedBy: assignedBy,
		IsActive:   true,
	}

	return r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"is_active":   true,
				"assigned_by": assignedBy,
			}),
		}).
		Create(&assignment).Error
}

// Unassign deactivates an assignment row
func (r *GormTaskRepository) Unassign(taskID, userID uint64) error {
	return r.db.Model(&models.TaskAssignment{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Update("is_active", false).Error
}

// FindAssignment finds an active assignment
func (r *GormTaskRepository) FindAssignment(taskID, userID uint64) (*models.TaskAssignment, error) {
	var assignment models.TaskAssignment
	if err := r.db.
		Where("task_id = ? AND user_id = ? AND is_active = ?", taskID, userID, true).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}
