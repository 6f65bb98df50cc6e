package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin       UserRole = "admin"
	UserRoleManager     UserRole = "manager"
	UserRoleDeveloper   UserRole = "developer"
	UserRoleTester      UserRole = "tester"
	UserRoleGuest       UserRole = "guest"
	UserRoleContributor UserRole = "contributor"
	UserRoleViewer      UserRole = "viewer"
)

// Valid reports whether the role is one of the known user roles.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleManager, UserRoleDeveloper, UserRoleTester,
		UserRoleGuest, UserRoleContributor, UserRoleViewer:
		return true
	}
	return false
}

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName     string         `gorm:"type:varchar(100)" json:"full_name"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole       `gorm:"type:varchar(20);not null;default:'developer'" json:"role"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	IsVerified   bool           `gorm:"not null;default:false" json:"is_verified"`
	LastActiveAt *time.Time     `json:"last_active_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	CreatedProjects []Project        `gorm:"foreignKey:CreatorID" json:"-"`
	Memberships     []ProjectMember  `gorm:"foreignKey:UserID" json:"-"`
	CreatedTasks    []Task           `gorm:"foreignKey:CreatorID" json:"-"`
	Assignments     []TaskAssignment `gorm:"foreignKey:UserID" json:"-"`
	Calendars       []Calendar       `gorm:"foreignKey:OwnerID" json:"-"`
}

// IsAdmin reports whether the user carries the global admin role. Admin is
// the only role with implicit cross-resource privilege.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
