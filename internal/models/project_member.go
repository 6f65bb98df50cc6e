package models

import "time"

type ProjectRole string

const (
	ProjectRoleOwner     ProjectRole = "owner"
	ProjectRoleManager   ProjectRole = "manager"
	ProjectRoleDeveloper ProjectRole = "developer"
	ProjectRoleTester    ProjectRole = "tester"
	ProjectRoleViewer    ProjectRole = "viewer"
)

func (r ProjectRole) Valid() bool {
	switch r {
	case ProjectRoleOwner, ProjectRoleManager, ProjectRoleDeveloper,
		ProjectRoleTester, ProjectRoleViewer:
		return true
	}
	return false
}

// CanManage reports whether the membership role grants manage permission on
// the project (update fields, add/remove members, delete).
func (r ProjectRole) CanManage() bool {
	return r == ProjectRoleOwner || r == ProjectRoleManager
}

// ProjectMember links a user to a project with a resource-scoped role.
// A (project, user) pair has at most one row; deactivation flips IsActive
// instead of deleting, and re-adding reactivates the same row.
type ProjectMember struct {
	ID        uint64      `gorm:"primarykey" json:"id"`
	ProjectID uint64      `gorm:"not null;uniqueIndex:idx_project_user" json:"project_id"`
	UserID    uint64      `gorm:"not null;uniqueIndex:idx_project_user" json:"user_id"`
	Role      ProjectRole `gorm:"type:varchar(20);not null" json:"role"`
	IsActive  bool        `gorm:"not null;default:true" json:"is_active"`
	JoinedAt  time.Time   `json:"joined_at"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
