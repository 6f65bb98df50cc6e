package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/itjee/jwp-pms-v1/internal/models"
)

// ErrAttendeeNotFound is returned when no attendee row exists for the
// (event, user) pair.
var ErrAttendeeNotFound = errors.New("calendar repository: attendee not found")

// GormCalendarRepository is a GORM implementation of CalendarRepository
type GormCalendarRepository struct {
	db *gorm.DB
}

// NewCalendarRepository creates a new CalendarRepository
func NewCalendarRepository(db *gorm.DB) CalendarRepository {
	return &GormCalendarRepository{db: db}
}

// CreateCalendar creates a new calendar
func (r *GormCalendarRepository) CreateCalendar(calendar *models.Calendar) error {
	return r.db.Create(calendar).Error
}

// FindCalendarByID finds a calendar by ID
func (r *GormCalendarRepository) FindCalendarByID(id uint64) (*models.Calendar, error) {
	var calendar models.Calendar
	if err := r.db.First(&calendar, id).Error; err != nil {
		return nil, err
	}
	return &calendar, nil
}

// ListCalendars retrieves the calendars with the given IDs
func (r *GormCalendarRepository) ListCalendars(ids []uint64) ([]models.Calendar, error) {
	if len(ids) == 0 {
		return []models.Calendar{}, nil
	}

	var calendars []models.Calendar
	if err := r.db.Preload("Owner").
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&calendars).Error; err != nil {
		return nil, err
	}
	return calendars, nil
}

// UpdateCalendar updates a calendar
func (r *GormCalendarRepository) UpdateCalendar(calendar *models.Calendar) error {
	return r.db.Save(calendar).Error
}

// DeleteCalendar soft deletes a calendar, its events and their attendee rows
func (r *GormCalendarRepository) DeleteCalendar(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var eventIDs []uint64
		if err := tx.Model(&models.Event{}).
			Where("calendar_id = ?", id).
			Pluck("id", &eventIDs).Error; err != nil {
			return err
		}

		if len(eventIDs) > 0 {
			if err := tx.Where("event_id IN ?", eventIDs).
				Delete(&models.EventAttendee{}).Error; err != nil {
				return err
			}
			if err := tx.Where("calendar_id = ?", id).
				Delete(&models.Event{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Calendar{}, id).Error
	})
}

// CreateEvent creates a new event
func (r *GormCalendarRepository) CreateEvent(event *models.Event) error {
	return r.db.Create(event).Error
}

// FindEventByID finds an event by ID with optional preloading
func (r *GormCalendarRepository) FindEventByID(id uint64, preload ...string) (*models.Event, error) {
	var event models.Event
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&event, id).Error; err != nil {
		return nil, err
	}

	return &event, nil
}

// ListEvents retrieves events on the given calendars within a time range
func (r *GormCalendarRepository) ListEvents(calendarIDs []uint64, from, to *time.Time) ([]models.Event, error) {
	if len(calendarIDs) == 0 {
		return []models.Event{}, nil
	}

	query := r.db.Where("calendar_id IN ?", calendarIDs)

	if from != nil {
		query = query.Where("end_time >= ?", *from)
	}
	if to != nil {
		query = query.Where("start_time < ?", *to)
	}

	var events []models.Event
	if err := query.Preload("Calendar").
		Order("start_time ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateEvent updates an event
func (r *GormCalendarRepository) UpdateEvent(event *models.Event) error {
	return r.db.Save(event).Error
}

// DeleteEvent soft deletes an event and removes its attendee rows
func (r *GormCalendarRepository) DeleteEvent(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).
			Delete(&models.EventAttendee{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Event{}, id).Error
	})
}

// AddAttendee adds an attendee row. Adding the same attendee twice leaves a
// single row with the original response untouched.
func (r *GormCalendarRepository) AddAttendee(attendee *models.EventAttendee) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(attendee).Error
}

// RemoveAttendee removes an attendee row
func (r *GormCalendarRepository) RemoveAttendee(eventID, userID uint64) error {
	return r.db.Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.EventAttendee{}).Error
}

// UpdateAttendeeResponse records an attendee's response
func (r *GormCalendarRepository) UpdateAttendeeResponse(eventID, userID uint64, response models.AttendeeResponse) error {
	result := r.db.Model(&models.EventAttendee{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Updates(map[string]interface{}{
			"response":     response,
			"responded_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAttendeeNotFound
	}
	return nil
}
