package models

import "time"

// TaskAssignment links a user to a task they are responsible for. At most one
// row exists per (task, user) pair; unassigning deactivates the row and
// re-assigning reactivates it.
type TaskAssignment struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	TaskID     uint64    `gorm:"not null;uniqueIndex:idx_task_user" json:"task_id"`
	UserID     uint64    `gorm:"not null;uniqueIndex:idx_task_user" json:"user_id"`
	AssignedBy uint64    `gorm:"not null" json:"assigned_by"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
