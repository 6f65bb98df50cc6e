package permissions

import (
	"gorm.io/gorm"

	"github.com/itjee/jwp-pms-v1/internal/models"
)

// CalendarEvaluator resolves event access from calendar ownership, the public
// flag and attendee listing.
type CalendarEvaluator struct {
	db *gorm.DB
}

func NewCalendarEvaluator(db *gorm.DB) *CalendarEvaluator {
	return &CalendarEvaluator{db: db}
}

// CanReadEvent reports whether the user may read the event. Attendee presence
// grants read access regardless of the response value; events on public
// calendars are readable by anyone, including anonymous callers.
func (e *CalendarEvaluator) CanReadEvent(user *models.User, event *models.Event) (bool, error) {
	calendar, err := e.eventCalendar(event)
	if err != nil {
		return false, err
	}
	if calendar.IsPublic {
		return true, nil
	}
	if user == nil {
		return false, nil
	}
	if user.IsAdmin() {
		return true, nil
	}
	if event.CreatorID == user.ID || calendar.OwnerID == user.ID {
		return true, nil
	}

	var count int64
	err = e.db.Model(&models.EventAttendee{}).
		Where("event_id = ? AND user_id = ?", event.ID, user.ID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CanModifyEvent reports whether the user may edit or delete the event.
// Attendee presence alone never grants write access.
func (e *CalendarEvaluator) CanModifyEvent(user *models.User, event *models.Event) (bool, error) {
	if user == nil {
		return false, nil
	}
	if user.IsAdmin() {
		return true, nil
	}
	if event.CreatorID == user.ID {
		return true, nil
	}

	calendar, err := e.eventCalendar(event)
	if err != nil {
		return false, err
	}
	return calendar.OwnerID == user.ID, nil
}

// CanManageCalendar reports whether the user may update or delete the
// calendar itself. Ownership is immutable, so this is owner-or-admin.
func (e *CalendarEvaluator) CanManageCalendar(user *models.User, calendar *models.Calendar) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin() || calendar.OwnerID == user.ID
}

// AccessibleCalendarIDs returns the calendars the user may list events from
// (owned and public), computed once per request so event listing filters by
// set membership instead of re-evaluating per event.
func (e *CalendarEvaluator) AccessibleCalendarIDs(user *models.User) ([]uint64, error) {
	var ids []uint64

	if user == nil {
		err := e.db.Model(&models.Calendar{}).
			Where("is_public = ?", true).
			Pluck("id", &ids).Error
		return ids, err
	}

	if user.IsAdmin() {
		err := e.db.Model(&models.Calendar{}).Pluck("id", &ids).Error
		return ids, err
	}

	err := e.db.Model(&models.Calendar{}).
		Where("is_public = ? OR owner_id = ?", true, user.ID).
		Pluck("id", &ids).Error
	return ids, err
}

func (e *CalendarEvaluator) eventCalendar(event *models.Event) (*models.Calendar, error) {
	if event.Calendar.ID == event.CalendarID && event.CalendarID != 0 {
		return &event.Calendar, nil
	}

	var calendar models.Calendar
	if err := e.db.First(&calendar, event.CalendarID).Error; err != nil {
		return nil, err
	}
	return &calendar, nil
}
