package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/itjee/jwp-pms-v1/internal/models"
	"github.com/itjee/jwp-pms-v1/internal/permissions"
	"github.com/itjee/jwp-pms-v1/internal/repository"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskTitleRequired   = errors.New("task title cannot be empty")
	ErrInvalidTaskStatus   = errors.New("invalid task status")
	ErrInvalidTaskPriority = errors.New("invalid task priority")
	ErrProjectAccessDenied = errors.New("no access to the task's project")
	ErrAssigneeNotMember   = errors.New("assignee has no access to the task's project")
)

// TaskService handles task business logic.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	evaluator   *permissions.TaskEvaluator
	projects    *permissions.ProjectEvaluator
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, evaluator *permissions.TaskEvaluator, projects *permissions.ProjectEvaluator) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		evaluator:   evaluator,
		projects:    projects,
	}
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	ProjectID   *uint64
	DueDate     *time.Time
}

// CreateTask creates a task. When the task is linked to a project, the
// creator must be able to read that project.
func (s *TaskService) CreateTask(creator *models.User, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTaskTitleRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	} else if !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	} else if !input.Priority.Valid() {
		return nil, ErrInvalidTaskPriority
	}

	if input.ProjectID != nil {
		if err := s.requireProjectRead(creator, *input.ProjectID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		ProjectID:   input.ProjectID,
		CreatorID:   creator.ID,
		DueDate:     input.DueDate,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Project")
}

// GetTask returns a task with related data.
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Creator", "Project", "Assignments", "Assignments.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// ListTasksInput represents filters for listing tasks.
type ListTasksInput struct {
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	AssignedToMe  bool
	DueToday      bool
	SortByDueDate bool
	Page          int
	PageSize      int
}

// ListTasks returns tasks visible to the user. The accessible-project set is
// resolved once and the query filters by membership in that set, so the cost
// scales with distinct projects rather than distinct tasks.
func (s *TaskService) ListTasks(user *models.User, input ListTasksInput) ([]models.Task, int64, error) {
	projectIDs, err := s.evaluator.AccessibleProjectIDs(user)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve accessible projects: %w", err)
	}

	filter := repository.TaskFilter{
		ProjectIDs:    projectIDs,
		UserID:        user.ID,
		Admin:         user.IsAdmin(),
		Status:        input.Status,
		Priority:      input.Priority,
		SortByDueDate: input.SortByDueDate,
		Page:          input.Page,
		PageSize:      input.PageSize,
	}

	if input.AssignedToMe {
		filter.AssignedTo = &user.ID
	}
	if input.DueToday {
		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)
		filter.DueDateFrom = &startOfDay
		filter.DueDateTo = &endOfDay
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// UpdateTaskInput represents input for updating a task.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
}

// UpdateTask updates an existing task.
func (s *TaskService) UpdateTask(taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTaskTitleRequired
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidTaskPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Creator", "Project", "Assignments", "Assignments.User")
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(taskID uint64) error {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// AssignTask assigns a user to the task. The assignee must be able to access
// the task's project when one is linked.
func (s *TaskService) AssignTask(task *models.Task, assigneeID, assignedBy uint64) error {
	assignee, err := s.userRepo.FindByID(assigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}

	if task.ProjectID != nil {
		if err := s.requireProjectRead(assignee, *task.ProjectID); err != nil {
			if errors.Is(err, ErrProjectAccessDenied) {
				return ErrAssigneeNotMember
			}
			return err
		}
	}

	if err := s.taskRepo.Assign(task.ID, assigneeID, assignedBy); err != nil {
		return fmt.Errorf("failed to assign task: %w", err)
	}

	return nil
}

// UnassignTask deactivates a user's assignment.
func (s *TaskService) UnassignTask(taskID, userID uint64) error {
	if err := s.taskRepo.Unassign(taskID, userID); err != nil {
		return fmt.Errorf("failed to unassign task: %w", err)
	}
	return nil
}

func (s *TaskService) requireProjectRead(user *models.User, projectID uint64) error {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	ok, err := s.projects.CanRead(user, project)
	if err != nil {
		return fmt.Errorf("failed to evaluate project access: %w", err)
	}
	if !ok {
		return ErrProjectAccessDenied
	}
	return nil
}
