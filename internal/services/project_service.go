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
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectNameRequired  = errors.New("project name cannot be empty")
	ErrInvalidProjectRole   = errors.New("invalid project member role")
	ErrInvalidProjectStatus = errors.New("invalid project status")
	ErrAlreadyProjectMember = errors.New("user is already a member of this project")
	ErrProjectMemberMissing = errors.New("project member not found")
	ErrLastProjectOwner     = errors.New("cannot remove the last project owner")
	ErrOwnerRoleViaTransfer = errors.New("owner role cannot be granted through member addition")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	evaluator   *permissions.ProjectEvaluator
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, evaluator *permissions.ProjectEvaluator) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		evaluator:   evaluator,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	IsPublic    bool
	CreatorID   uint64
	StartDate   *time.Time
	EndDate     *time.Time
}

// CreateProject creates a project with the creator as its owner. The project
// and the owner membership are written in one transaction.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrProjectNameRequired
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		Status:      models.ProjectStatusPlanning,
		IsPublic:    input.IsPublic,
		CreatorID:   input.CreatorID,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}

	if err := s.projectRepo.CreateWithOwner(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject returns a project with its creator and active members.
func (s *ProjectService) GetProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, "Creator")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	return project, nil
}

// ListProjects returns the projects the user can read, resolved as one
// accessible-id set instead of a per-project access check.
func (s *ProjectService) ListProjects(user *models.User, page, pageSize int) ([]models.Project, int64, error) {
	ids, err := s.evaluator.AccessibleProjectIDs(user)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve accessible projects: %w", err)
	}

	projects, total, err := s.projectRepo.List(ids, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

// UpdateProjectInput represents partial project updates.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	IsPublic    *bool
	StartDate   *time.Time
	EndDate     *time.Time
}

// UpdateProject updates project fields.
func (s *ProjectService) UpdateProject(projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrProjectNameRequired
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidProjectStatus
		}
		project.Status = *input.Status
	}
	if input.IsPublic != nil {
		project.IsPublic = *input.IsPublic
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		project.EndDate = input.EndDate
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project.
func (s *ProjectService) DeleteProject(projectID uint64) error {
	if _, err := s.GetProject(projectID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// AddMemberInput represents parameters to add a project member.
type AddMemberInput struct {
	ProjectID uint64
	UserID    uint64
	Role      models.ProjectRole
}

// AddMember adds a user to the project. Re-adding a removed member
// reactivates the previous membership row; adding an active member is a
// conflict. The owner role is only ever created with the project itself.
func (s *ProjectService) AddMember(input AddMemberInput) (*models.ProjectMember, error) {
	if !input.Role.Valid() {
		return nil, ErrInvalidProjectRole
	}
	if input.Role == models.ProjectRoleOwner {
		return nil, ErrOwnerRoleViaTransfer
	}

	if _, err := s.userRepo.FindByID(input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.projectRepo.FindMember(input.ProjectID, input.UserID); err == nil {
		return nil, ErrAlreadyProjectMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: input.ProjectID,
		UserID:    input.UserID,
		Role:      input.Role,
		IsActive:  true,
		JoinedAt:  time.Now(),
	}

	if err := s.projectRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// RemoveMember deactivates a membership. Removing the sole active owner is
// rejected unconditionally, regardless of the caller's role.
func (s *ProjectService) RemoveMember(projectID, userID uint64) error {
	err := s.projectRepo.RemoveMember(projectID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMemberNotFound):
			return ErrProjectMemberMissing
		case errors.Is(err, repository.ErrLastProjectOwner):
			return ErrLastProjectOwner
		default:
			return fmt.Errorf("failed to remove member: %w", err)
		}
	}

	return nil
}

// ListMembers lists the active members of a project.
func (s *ProjectService) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	return members, nil
}
