// Package permissions holds one access evaluator per resource type. Every
// code path that reads or mutates a project, task or event goes through the
// matching evaluator, so list, get and mutation endpoints cannot drift apart.
//
// Evaluators are read-only: they never mutate state, and a nil user means an
// anonymous caller.
package permissions

import (
	"errors"

	"gorm.io/gorm"

	"github.com/itjee/jwp-pms-v1/internal/models"
)

// ProjectEvaluator resolves project access from ownership, membership and the
// public flag.
type ProjectEvaluator struct {
	db *gorm.DB
}

func NewProjectEvaluator(db *gorm.DB) *ProjectEvaluator {
	return &ProjectEvaluator{db: db}
}

// CanRead reports whether the user may read the project. Public projects are
// readable by anyone, including anonymous callers.
func (e *ProjectEvaluator) CanRead(user *models.User, project *models.Project) (bool, error) {
	if project.IsPublic {
		return true, nil
	}
	if user == nil {
		return false, nil
	}
	if user.IsAdmin() {
		return true, nil
	}
	if project.CreatorID == user.ID {
		return true, nil
	}

	var count int64
	err := e.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ? AND is_active = ?", project.ID, user.ID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CanManage reports whether the user may update the project, manage its
// members or delete it. Only admins and active owner/manager members qualify;
// creators hold this through the owner membership created with the project.
func (e *ProjectEvaluator) CanManage(user *models.User, project *models.Project) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.IsAdmin() {
		return true, nil
	}

	var member models.ProjectMember
	err := e.db.
		Where("project_id = ? AND user_id = ? AND is_active = ?", project.ID, user.ID, true).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return member.Role.CanManage(), nil
}

// AccessibleProjectIDs returns every project ID the user can read, computed
// once so list endpoints filter by set membership instead of re-evaluating
// access per row. For a nil user the set is the public projects only.
func (e *ProjectEvaluator) AccessibleProjectIDs(user *models.User) ([]uint64, error) {
	var ids []uint64

	if user == nil {
		err := e.db.Model(&models.Project{}).
			Where("is_public = ?", true).
			Pluck("id", &ids).Error
		return ids, err
	}

	if user.IsAdmin() {
		err := e.db.Model(&models.Project{}).Pluck("id", &ids).Error
		return ids, err
	}

	memberSub := e.db.Model(&models.ProjectMember{}).
		Select("project_id").
		Where("user_id = ? AND is_active = ?", user.ID, true)

	err := e.db.Model(&models.Project{}).
		Where("is_public = ? OR creator_id = ? OR id IN (?)", true, user.ID, memberSub).
		Pluck("id", &ids).Error
	return ids, err
}
