package dto

import (
	"time"

	"github.com/itjee/jwp-pms-v1/internal/models"
)

// CalendarDTO represents a calendar in API responses
type CalendarDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color,omitempty"`
	IsPublic    bool      `json:"is_public"`
	OwnerID     uint64    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	Owner       *UserDTO  `json:"owner,omitempty"`
}

// EventAttendeeDTO represents an event attendee in API responses
type EventAttendeeDTO struct {
	UserID      uint64                  `json:"user_id"`
	Response    models.AttendeeResponse `json:"response"`
	RespondedAt *time.Time              `json:"responded_at,omitempty"`
	User        *UserDTO                `json:"user,omitempty"`
}

// EventDTO represents an event in API responses
type EventDTO struct {
	ID          uint64             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Location    string             `json:"location,omitempty"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	AllDay      bool               `json:"all_day"`
	CalendarID  uint64             `json:"calendar_id"`
	CreatorID   uint64             `json:"creator_id"`
	ProjectID   *uint64            `json:"project_id,omitempty"`
	TaskID      *uint64            `json:"task_id,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	Calendar    *CalendarDTO       `json:"calendar,omitempty"`
	Attendees   []EventAttendeeDTO `json:"attendees,omitempty"`
}

// ToCalendarDTO converts a Calendar model to CalendarDTO
func ToCalendarDTO(calendar models.Calendar) CalendarDTO {
	dto := CalendarDTO{
		ID:          calendar.ID,
		Name:        calendar.Name,
		Description: calendar.Description,
		Color:       calendar.Color,
		IsPublic:    calendar.IsPublic,
		OwnerID:     calendar.OwnerID,
		CreatedAt:   calendar.CreatedAt,
	}

	if calendar.Owner.ID != 0 {
		owner := ToUserDTO(calendar.Owner)
		dto.Owner = &owner
	}

	return dto
}

// ToEventDTO converts an Event model to EventDTO
func ToEventDTO(event models.Event) EventDTO {
	dto := EventDTO{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		AllDay:      event.AllDay,
		CalendarID:  event.CalendarID,
		CreatorID:   event.CreatorID,
		ProjectID:   event.ProjectID,
		TaskID:      event.TaskID,
		CreatedAt:   event.CreatedAt,
	}

	if event.Calendar.ID != 0 {
		calendar := ToCalendarDTO(event.Calendar)
		dto.Calendar = &calendar
	}

	for _, attendee := range event.Attendees {
		attendeeDTO := EventAttendeeDTO{
			UserID:      attendee.UserID,
			Response:    attendee.Response,
			RespondedAt: attendee.RespondedAt,
		}
		if attendee.User.ID != 0 {
			user := ToUserDTO(attendee.User)
			attendeeDTO.User = &user
		}
		dto.Attendees = append(dto.Attendees, attendeeDTO)
	}

	return dto
}
