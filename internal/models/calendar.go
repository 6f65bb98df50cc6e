package models

import (
	"time"

	"gorm.io/gorm"
)

// Calendar groups events under a single owner. Ownership is immutable after
// creation; a public calendar is readable by anyone, including anonymous
// callers.
type Calendar struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Color       string         `gorm:"type:varchar(7)" json:"color"`
	IsPublic    bool           `gorm:"not null;default:false" json:"is_public"`
	OwnerID     uint64         `gorm:"not null;index" json:"owner_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner  User    `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Events []Event `gorm:"foreignKey:CalendarID" json:"events,omitempty"`
}
