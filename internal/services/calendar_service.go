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
	ErrCalendarNotFound        = errors.New("calendar not found")
	ErrCalendarNameRequired    = errors.New("calendar name cannot be empty")
	ErrEventNotFound           = errors.New("event not found")
	ErrEventTitleRequired      = errors.New("event title cannot be empty")
	ErrEventTimeInvalid        = errors.New("event end time must be after start time")
	ErrInvalidAttendeeResponse = errors.New("invalid attendee response")
	ErrAttendeeNotFound        = errors.New("attendee not found")
	ErrNotCalendarOwner        = errors.New("only the calendar owner can perform this action")
)

// CalendarService provides business logic for calendars, events and
// attendees.
type CalendarService struct {
	calendarRepo repository.CalendarRepository
	userRepo     repository.UserRepository
	evaluator    *permissions.CalendarEvaluator
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(calendarRepo repository.CalendarRepository, userRepo repository.UserRepository, evaluator *permissions.CalendarEvaluator) *CalendarService {
	return &CalendarService{
		calendarRepo: calendarRepo,
		userRepo:     userRepo,
		evaluator:    evaluator,
	}
}

// CreateCalendarInput represents parameters to create a calendar.
type CreateCalendarInput struct {
	Name        string
	Description string
	Color       string
	IsPublic    bool
	OwnerID     uint64
}

// CreateCalendar creates a calendar owned by the caller. Ownership is
// immutable afterwards.
func (s *CalendarService) CreateCalendar(input CreateCalendarInput) (*models.Calendar, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrCalendarNameRequired
	}

	calendar := &models.Calendar{
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		IsPublic:    input.IsPublic,
		OwnerID:     input.OwnerID,
	}

	if err := s.calendarRepo.CreateCalendar(calendar); err != nil {
		return nil, fmt.Errorf("failed to create calendar: %w", err)
	}

	return calendar, nil
}

// GetCalendar returns a calendar by ID.
func (s *CalendarService) GetCalendar(calendarID uint64) (*models.Calendar, error) {
	calendar, err := s.calendarRepo.FindCalendarByID(calendarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCalendarNotFound
		}
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	return calendar, nil
}

// ListCalendars returns the calendars the user can see: owned plus public,
// resolved as one id set.
func (s *CalendarService) ListCalendars(user *models.User) ([]models.Calendar, error) {
	ids, err := s.evaluator.AccessibleCalendarIDs(user)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accessible calendars: %w", err)
	}

	calendars, err := s.calendarRepo.ListCalendars(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	return calendars, nil
}

// UpdateCalendarInput represents partial calendar updates. Ownership is not
// updatable.
type UpdateCalendarInput struct {
	Name        *string
	Description *string
	Color       *string
	IsPublic    *bool
}

// UpdateCalendar updates calendar fields for its owner or an admin.
func (s *CalendarService) UpdateCalendar(user *models.User, calendarID uint64, input UpdateCalendarInput) (*models.Calendar, error) {
	calendar, err := s.GetCalendar(calendarID)
	if err != nil {
		return nil, err
	}

	if !s.evaluator.CanManageCalendar(user, calendar) {
		return nil, ErrNotCalendarOwner
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrCalendarNameRequired
		}
		calendar.Name = *input.Name
	}
	if input.Description != nil {
		calendar.Description = *input.Description
	}
	if input.Color != nil {
		calendar.Color = *input.Color
	}
	if input.IsPublic != nil {
		calendar.IsPublic = *input.IsPublic
	}

	if err := s.calendarRepo.UpdateCalendar(calendar); err != nil {
		return nil, fmt.Errorf("failed to update calendar: %w", err)
	}

	return calendar, nil
}

// DeleteCalendar removes a calendar and its events.
func (s *CalendarService) DeleteCalendar(user *models.User, calendarID uint64) error {
	calendar, err := s.GetCalendar(calendarID)
	if err != nil {
		return err
	}

	if !s.evaluator.CanManageCalendar(user, calendar) {
		return ErrNotCalendarOwner
	}

	if err := s.calendarRepo.DeleteCalendar(calendarID); err != nil {
		return fmt.Errorf("failed to delete calendar: %w", err)
	}

	return nil
}

// CreateEventInput represents parameters to create an event.
type CreateEventInput struct {
	CalendarID  uint64
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
	ProjectID   *uint64
	TaskID      *uint64
	AttendeeIDs []uint64
}

// CreateEvent creates an event on a calendar the caller owns (or as admin)
// and registers the initial attendees.
func (s *CalendarService) CreateEvent(creator *models.User, input CreateEventInput) (*models.Event, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrEventTitleRequired
	}
	if !input.EndTime.After(input.StartTime) {
		return nil, ErrEventTimeInvalid
	}

	calendar, err := s.GetCalendar(input.CalendarID)
	if err != nil {
		return nil, err
	}

	if !s.evaluator.CanManageCalendar(creator, calendar) {
		return nil, ErrNotCalendarOwner
	}

	event := &models.Event{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		AllDay:      input.AllDay,
		CalendarID:  input.CalendarID,
		CreatorID:   creator.ID,
		ProjectID:   input.ProjectID,
		TaskID:      input.TaskID,
	}

	if err := s.calendarRepo.CreateEvent(event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	for _, userID := range input.AttendeeIDs {
		if err := s.AddAttendee(event.ID, userID); err != nil {
			return nil, err
		}
	}

	return s.calendarRepo.FindEventByID(event.ID, "Calendar", "Attendees", "Attendees.User")
}

// GetEvent returns an event with its calendar and attendees.
func (s *CalendarService) GetEvent(eventID uint64) (*models.Event, error) {
	event, err := s.calendarRepo.FindEventByID(eventID, "Calendar", "Creator", "Attendees", "Attendees.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}

	return event, nil
}

// ListEventsInput bounds an event listing.
type ListEventsInput struct {
	CalendarID *uint64
	From       *time.Time
	To         *time.Time
}

// ListEvents returns events on calendars the user can see. The accessible
// calendar set is resolved once per request, not per event.
func (s *CalendarService) ListEvents(user *models.User, input ListEventsInput) ([]models.Event, error) {
	ids, err := s.evaluator.AccessibleCalendarIDs(user)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accessible calendars: %w", err)
	}

	if input.CalendarID != nil {
		found := false
		for _, id := range ids {
			if id == *input.CalendarID {
				found = true
				break
			}
		}
		if !found {
			return []models.Event{}, nil
		}
		ids = []uint64{*input.CalendarID}
	}

	events, err := s.calendarRepo.ListEvents(ids, input.From, input.To)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}

// UpdateEventInput represents partial event updates.
type UpdateEventInput struct {
	Title       *string
	Description *string
	Location    *string
	StartTime   *time.Time
	EndTime     *time.Time
	AllDay      *bool
}

// UpdateEvent updates event fields. Authorization is enforced by the caller
// through the calendar evaluator's CanModifyEvent.
func (s *CalendarService) UpdateEvent(eventID uint64, input UpdateEventInput) (*models.Event, error) {
	event, err := s.GetEvent(eventID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrEventTitleRequired
		}
		event.Title = *input.Title
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.Location != nil {
		event.Location = *input.Location
	}
	if input.StartTime != nil {
		event.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		event.EndTime = *input.EndTime
	}
	if input.AllDay != nil {
		event.AllDay = *input.AllDay
	}

	if !event.EndTime.After(event.StartTime) {
		return nil, ErrEventTimeInvalid
	}

	if err := s.calendarRepo.UpdateEvent(event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return event, nil
}

// DeleteEvent removes an event.
func (s *CalendarService) DeleteEvent(eventID uint64) error {
	if _, err := s.GetEvent(eventID); err != nil {
		return err
	}

	if err := s.calendarRepo.DeleteEvent(eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return nil
}

// AddAttendee adds a user to the event's attendee set. Idempotent: adding
// the same attendee twice leaves exactly one row.
func (s *CalendarService) AddAttendee(eventID, userID uint64) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	attendee := &models.EventAttendee{
		EventID:  eventID,
		UserID:   userID,
		Response: models.AttendeeResponsePending,
	}

	if err := s.calendarRepo.AddAttendee(attendee); err != nil {
		return fmt.Errorf("failed to add attendee: %w", err)
	}

	return nil
}

// RemoveAttendee removes a user from the event's attendee set.
func (s *CalendarService) RemoveAttendee(eventID, userID uint64) error {
	if err := s.calendarRepo.RemoveAttendee(eventID, userID); err != nil {
		return fmt.Errorf("failed to remove attendee: %w", err)
	}
	return nil
}

// RespondToEvent records the user's response to an event invitation.
func (s *CalendarService) RespondToEvent(eventID, userID uint64, response models.AttendeeResponse) error {
	if !response.Valid() {
		return ErrInvalidAttendeeResponse
	}

	if err := s.calendarRepo.UpdateAttendeeResponse(eventID, userID, response); err != nil {
		if errors.Is(err, repository.ErrAttendeeNotFound) {
			return ErrAttendeeNotFound
		}
		return fmt.Errorf("failed to record response: %w", err)
	}

	return nil
}
