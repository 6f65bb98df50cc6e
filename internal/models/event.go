package models

import (
	"time"

	"gorm.io/gorm"
)

// Event belongs to exactly one calendar. The optional project/task references
// are contextual links only; they carry no permission inheritance.
type Event struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Location    string         `gorm:"type:varchar(255)" json:"location"`
	StartTime   time.Time      `gorm:"not null" json:"start_time"`
	EndTime     time.Time      `gorm:"not null" json:"end_time"`
	AllDay      bool           `gorm:"not null;default:false" json:"all_day"`
	CalendarID  uint64         `gorm:"not null;index" json:"calendar_id"`
	CreatorID   uint64         `gorm:"not null;index" json:"creator_id"`
	ProjectID   *uint64        `json:"project_id"`
	TaskID      *uint64        `json:"task_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Calendar  Calendar        `gorm:"foreignKey:CalendarID" json:"calendar,omitempty"`
	Creator   User            `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Attendees []EventAttendee `gorm:"foreignKey:EventID" json:"attendees,omitempty"`
}
