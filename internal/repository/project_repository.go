package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/itjee/jwp-pms-v1/internal/models"
)

var (
	// ErrLastProjectOwner is returned when removing a membership would leave
	// the project without an active owner.
	ErrLastProjectOwner = errors.New("project repository: cannot remove the last project owner")
	// ErrMemberNotFound is returned when no active membership exists for the
	// (project, user) pair.
	ErrMemberNotFound = errors.New("project repository: member not found")
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithOwner creates the project and the creator's OWNER membership
// atomically. A crash between the two writes would leave an ownerless
// project, so they share one transaction.
func (r *GormProjectRepository) CreateWithOwner(project *models.Project) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		member := &models.ProjectMember{
			ProjectID: project.ID,
			UserID:    project.CreatorID,
			Role:      models.ProjectRoleOwner,
			IsActive:  true,
			JoinedAt:  time.Now(),
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}

		return nil
	})
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// List retrieves the projects with the given IDs, paginated
func (r *GormProjectRepository) List(ids []uint64, page, pageSize int) ([]models.Project, int64, error) {
	var projects []models.Project

	if len(ids) == 0 {
		return []models.Project{}, 0, nil
	}

	query := r.db.Model(&models.Project{}).Where("projects.id IN ?", ids)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("projects.created_at DESC")
	if page > 0 && pageSize > 0 {
		listQuery = listQuery.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	if err := listQuery.Preload("Creator").Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete soft deletes a project and deactivates its memberships
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProjectMember{}).
			Where("project_id = ?", id).
			Update("is_active", false).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// AddMember adds a membership row, reactivating an existing inactive row for
// the same (project, user) pair instead of duplicating it.
func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"is_active": true,
				"role":      member.Role,
			}),
		}).
		Create(member).Error
}

// RemoveMember deactivates a membership. The owner-count check and the write
// run in one transaction with the project row locked, so two concurrent
// removals cannot both observe "not the last owner" and leave the project
// ownerless.
func (r *GormProjectRepository) RemoveMember(projectID, userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// SQLite has no row locks; its writes serialize on the database lock.
		if tx.Dialector.Name() != "sqlite" {
			var project models.Project
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("id").
				First(&project, projectID).Error
			if err != nil {
				return err
			}
		}

		var member models.ProjectMember
		err := tx.
			Where("project_id = ? AND user_id = ? AND is_active = ?", projectID, userID, true).
			First(&member).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		if member.Role == models.ProjectRoleOwner {
			var owners int64
			err := tx.Model(&models.ProjectMember{}).
				Where("project_id = ? AND role = ? AND is_active = ?", projectID, models.ProjectRoleOwner, true).
				Count(&owners).Error
			if err != nil {
				return err
			}
			if owners <= 1 {
				return ErrLastProjectOwner
			}
		}

		return tx.Model(&models.ProjectMember{}).
			Where("id = ?", member.ID).
			Update("is_active", false).Error
	})
}

// FindMember finds an active membership
func (r *GormProjectRepository) FindMember(projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.
		Where("project_id = ? AND user_id = ? AND is_active = ?", projectID, userID, true).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists the active members of a project
func (r *GormProjectRepository) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.Preload("User").
		Where("project_id = ? AND is_active = ?", projectID, true).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}
