package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/itjee/jwp-pms-v1/internal/models"
	"github.com/itjee/jwp-pms-v1/internal/permissions"
	"github.com/itjee/jwp-pms-v1/internal/repository"
)

func newTestCalendarService(t *testing.T, db *gorm.DB) *CalendarService {
	t.Helper()

	calendarRepo := repository.NewCalendarRepository(db)
	userRepo := repository.NewUserRepository(db)
	evaluator := permissions.NewCalendarEvaluator(db)
	return NewCalendarService(calendarRepo, userRepo, evaluator)
}

func TestCalendarService_CreateEvent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestCalendarService(t, db)

	owner := createServiceTestUser(t, db, "owner", models.UserRoleDeveloper)
	attendee := createServiceTestUser(t, db, "attendee", models.UserRoleDeveloper)

	calendar, err := svc.CreateCalendar(CreateCalendarInput{Name: "work", OwnerID: owner.ID})
	require.NoError(t, err)

	start := time.Now()
	event, err := svc.CreateEvent(owner, CreateEventInput{
		CalendarID:  calendar.ID,
		Title:       "standup",
		StartTime:   start,
		EndTime:     start.Add(30 * time.Minute),
		AttendeeIDs: []uint64{attendee.ID},
	})
	require.NoError(t, err)
	require.Len(t, event.Attendees, 1)
	require.Equal(t, models.AttendeeResponsePending, event.Attendees[0].Response)
}

func TestCalendarService_CreateEventRejectsBadTimes(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestCalendarService(t, db)

	owner := createServiceTestUser(t, db, "owner", models.UserRoleDeveloper)

	calendar, err := svc.CreateCalendar(CreateCalendarInput{Name: "work", OwnerID: owner.ID})
	require.NoError(t, err)

	start := time.Now()
	_, err = svc.CreateEvent(owner, CreateEventInput{
		CalendarID: calendar.ID,
		Title:      "backwards",
		StartTime:  start,
		EndTime:    start.Add(-time.Hour),
	})
	require.ErrorIs(t, err, ErrEventTimeInvalid)

	_, err = svc.CreateEvent(owner, CreateEventInput{
		CalendarID: calendar.ID,
		Title:      "zero length",
		StartTime:  start,
		EndTime:    start,
	})
	require.ErrorIs(t, err, ErrEventTimeInvalid)
}

func TestCalendarService_CreateEventRequiresOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestCalendarService(t, db)

	owner := createServiceTestUser(t, db, "owner", models.UserRoleDeveloper)
	other := createServiceTestUser(t, db, "other", models.UserRoleDeveloper)
	admin := createServiceTestUser(t, db, "admin", models.UserRoleAdmin)

	calendar, err := svc.CreateCalendar(CreateCalendarInput{Name: "work", OwnerID: owner.ID})
	require.NoError(t, err)

	start := time.Now()
	_, err = svc.CreateEvent(other, CreateEventInput{
		CalendarID: calendar.ID,
		Title:      "intrusion",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
	})
	require.ErrorIs(t, err, ErrNotCalendarOwner)

	_, err = svc.CreateEvent(admin, CreateEventInput{
		CalendarID: calendar.ID,
		Title:      "admin event",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
	})
	require.NoError(t, err)
}

func TestCalendarService_UpdateCalendarOwnershipImmutable(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestCalendarService(t, db)

	owner := createServiceTestUser(t, db, "owner", models.UserRoleDeveloper)
	other := createServiceTestUser(t, db, "other", models.UserRoleDeveloper)

	calendar, err := svc.CreateCalendar(CreateCalendarInput{Name: "work", OwnerID: owner.ID})
	require.NoError(t, err)

	_, err = svc.UpdateCalendar(other, calendar.ID, UpdateCalendarInput{})
	require.ErrorIs(t, err, ErrNotCalendarOwner)

	name := "renamed"
	updated, err := svc.UpdateCalendar(owner, calendar.ID, UpdateCalendarInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Name)
	require.Equal(t, owner.ID, updated.OwnerID)
}

func TestCalendarService_AddAttendeeIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestCalendarService(t, db)

	owner := createServiceTestUser(t, db, "owner", models.UserRoleDeveloper)
	attendee := createServiceTestUser(t, db, "attendee", models.UserRoleDeveloper)

	calendar, err := svc.CreateCalendar(CreateCalendarInput{Name: "work", OwnerID: owner.ID})
	require.NoError(t, err)

	start := time.Now()
	event, err := svc.CreateEvent(owner, CreateEventInput{
		CalendarID: calendar.ID,
		Title:      "meeting",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, svc.AddAttendee(event.ID, attendee.ID))
	require.NoError(t, svc.AddAttendee(event.ID, attendee.ID))

	var rows []models.EventAttendee
	require.NoError(t, db.Where("event_id = ?", event.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
}

func TestCalendarService_RespondToEvent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestCalendarService(t, db)

	owner := createServiceTestUser(t, db, "owner", models.UserRoleDeveloper)
	attendee := createServiceTestUser(t, db, "attendee", models.UserRoleDeveloper)

	calendar, err := svc.CreateCalendar(CreateCalendarInput{Name: "work", OwnerID: owner.ID})
	require.NoError(t, err)

	start := time.Now()
	event, err := svc.CreateEvent(owner, CreateEventInput{
		CalendarID:  calendar.ID,
		Title:       "meeting",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		AttendeeIDs: []uint64{attendee.ID},
	})
	require.NoError(t, err)

	require.NoError(t, svc.RespondToEvent(event.ID, attendee.ID, models.AttendeeResponseAccepted))

	var row models.EventAttendee
	require.NoError(t, db.Where("event_id = ? AND user_id = ?", event.ID, attendee.ID).First(&row).Error)
	require.Equal(t, models.AttendeeResponseAccepted, row.Response)
	require.NotNil(t, row.RespondedAt)

	err = svc.RespondToEvent(event.ID, attendee.ID, models.AttendeeResponse("maybe"))
	require.ErrorIs(t, err, ErrInvalidAttendeeResponse)
}

func TestCalendarService_DeleteCalendarCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestCalendarService(t, db)

	owner := createServiceTestUser(t, db, "owner", models.UserRoleDeveloper)
	attendee := createServiceTestUser(t, db, "attendee", models.UserRoleDeveloper)

	calendar, err := svc.CreateCalendar(CreateCalendarInput{Name: "work", OwnerID: owner.ID})
	require.NoError(t, err)

	start := time.Now()
	event, err := svc.CreateEvent(owner, CreateEventInput{
		CalendarID:  calendar.ID,
		Title:       "meeting",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		AttendeeIDs: []uint64{attendee.ID},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCalendar(owner, calendar.ID))

	_, err = svc.GetCalendar(calendar.ID)
	require.ErrorIs(t, err, ErrCalendarNotFound)

	_, err = svc.GetEvent(event.ID)
	require.ErrorIs(t, err, ErrEventNotFound)

	var attendees int64
	require.NoError(t, db.Model(&models.EventAttendee{}).Where("event_id = ?", event.ID).Count(&attendees).Error)
	require.Zero(t, attendees)
}
