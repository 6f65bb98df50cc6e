package models

import "time"

type AttendeeResponse string

const (
	AttendeeResponsePending   AttendeeResponse = "pending"
	AttendeeResponseAccepted  AttendeeResponse = "accepted"
	AttendeeResponseDeclined  AttendeeResponse = "declined"
	AttendeeResponseTentative AttendeeResponse = "tentative"
)

func (r AttendeeResponse) Valid() bool {
	switch r {
	case AttendeeResponsePending, AttendeeResponseAccepted,
		AttendeeResponseDeclined, AttendeeResponseTentative:
		return true
	}
	return false
}

// EventAttendee links a user to an event. Presence in the attendee set grants
// read access to the event regardless of the response value.
type EventAttendee struct {
	EventID     uint64           `gorm:"primarykey" json:"event_id"`
	UserID      uint64           `gorm:"primarykey" json:"user_id"`
	Response    AttendeeResponse `gorm:"type:varchar(20);not null;default:'pending'" json:"response"`
	RespondedAt *time.Time       `json:"responded_at"`
	CreatedAt   time.Time        `json:"created_at"`

	// Relations
	Event Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
