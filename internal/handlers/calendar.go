package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/itjee/jwp-pms-v1/internal/dto"
	apierrors "github.com/itjee/jwp-pms-v1/internal/errors"
	"github.com/itjee/jwp-pms-v1/internal/middleware"
	"github.com/itjee/jwp-pms-v1/internal/models"
	"github.com/itjee/jwp-pms-v1/internal/services"
)

// CalendarHandler handles calendar, event and attendee endpoints.
type CalendarHandler struct {
	calendarService *services.CalendarService
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(calendarService *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
	}
}

// CreateCalendar creates a calendar owned by the caller.
func (h *CalendarHandler) CreateCalendar(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateCalendarRequest struct {
		Name        string `json:"name" binding:"required,max=100"`
		Description string `json:"description"`
		Color       string `json:"color" binding:"max=20"`
		IsPublic    bool   `json:"is_public"`
	}

	var req CreateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "Invalid request body")
		return
	}

	calendar, err := h.calendarService.CreateCalendar(services.CreateCalendarInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		IsPublic:    req.IsPublic,
		OwnerID:     user.ID,
	})
	if err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCalendarDTO(*calendar))
}

// ListCalendars lists the calendars visible to the caller.
func (h *CalendarHandler) ListCalendars(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)

	calendars, err := h.calendarService.ListCalendars(user)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	calendarDTOs := make([]dto.CalendarDTO, 0, len(calendars))
	for _, calendar := range calendars {
		calendarDTOs = append(calendarDTOs, dto.ToCalendarDTO(calendar))
	}

	c.JSON(http.StatusOK, gin.H{
		"calendars": calendarDTOs,
	})
}

// UpdateCalendar updates calendar fields for its owner or an admin.
func (h *CalendarHandler) UpdateCalendar(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	calendarID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateCalendarRequest struct {
		Name        *string `json:"name" binding:"omitempty,max=100"`
		Description *string `json:"description"`
		Color       *string `json:"color" binding:"omitempty,max=20"`
		IsPublic    *bool   `json:"is_public"`
	}

	var req UpdateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "Invalid request body")
		return
	}

	calendar, err := h.calendarService.UpdateCalendar(user, calendarID, services.UpdateCalendarInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCalendarDTO(*calendar))
}

// DeleteCalendar removes a calendar and its events.
func (h *CalendarHandler) DeleteCalendar(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	calendarID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.calendarService.DeleteCalendar(user, calendarID); err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Calendar deleted successfully",
	})
}

// CreateEvent creates an event on a calendar the caller owns.
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateEventRequest struct {
		CalendarID  uint64    `json:"calendar_id" binding:"required"`
		Title       string    `json:"title" binding:"required,max=200"`
		Description string    `json:"description"`
		Location    string    `json:"location" binding:"max=200"`
		StartTime   time.Time `json:"start_time" binding:"required"`
		EndTime     time.Time `json:"end_time" binding:"required"`
		AllDay      bool      `json:"all_day"`
		ProjectID   *uint64   `json:"project_id"`
		TaskID      *uint64   `json:"task_id"`
		AttendeeIDs []uint64  `json:"attendee_ids"`
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "Invalid request body")
		return
	}

	event, err := h.calendarService.CreateEvent(user, services.CreateEventInput{
		CalendarID:  req.CalendarID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		AllDay:      req.AllDay,
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		AttendeeIDs: req.AttendeeIDs,
	})
	if err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEventDTO(*event))
}

// ListEvents lists events on calendars visible to the caller.
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	user, _ := middleware.GetCurrentUser(c)

	var input services.ListEventsInput

	if v := c.Query("calendar_id"); v != "" {
		calendarID, ok := parseQueryID(c, "calendar_id")
		if !ok {
			return
		}
		input.CalendarID = &calendarID
	}
	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid from parameter")
			return
		}
		input.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid to parameter")
			return
		}
		input.To = &to
	}

	events, err := h.calendarService.ListEvents(user, input)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	eventDTOs := make([]dto.EventDTO, 0, len(events))
	for _, event := range events {
		eventDTOs = append(eventDTOs, dto.ToEventDTO(event))
	}

	c.JSON(http.StatusOK, gin.H{
		"events": eventDTOs,
	})
}

// GetEvent returns the event loaded by the access gate, with attendees.
func (h *CalendarHandler) GetEvent(c *gin.Context) {
	event, exists := middleware.GetEvent(c)
	if !exists {
		apierrors.InternalError(c, "")
		return
	}

	full, err := h.calendarService.GetEvent(event.ID)
	if err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEventDTO(*full))
}

// UpdateEvent updates event fields.
func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	event, exists := middleware.GetEvent(c)
	if !exists {
		apierrors.InternalError(c, "")
		return
	}

	type UpdateEventRequest struct {
		Title       *string    `json:"title" binding:"omitempty,max=200"`
		Description *string    `json:"description"`
		Location    *string    `json:"location" binding:"omitempty,max=200"`
		StartTime   *time.Time `json:"start_time"`
		EndTime     *time.Time `json:"end_time"`
		AllDay      *bool      `json:"all_day"`
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "Invalid request body")
		return
	}

	updated, err := h.calendarService.UpdateEvent(event.ID, services.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		AllDay:      req.AllDay,
	})
	if err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEventDTO(*updated))
}

// DeleteEvent removes an event.
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	event, exists := middleware.GetEvent(c)
	if !exists {
		apierrors.InternalError(c, "")
		return
	}

	if err := h.calendarService.DeleteEvent(event.ID); err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event deleted successfully",
	})
}

// AddAttendee invites a user to the event.
func (h *CalendarHandler) AddAttendee(c *gin.Context) {
	event, exists := middleware.GetEvent(c)
	if !exists {
		apierrors.InternalError(c, "")
		return
	}

	type AddAttendeeRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}

	var req AddAttendeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "Invalid request body")
		return
	}

	if err := h.calendarService.AddAttendee(event.ID, req.UserID); err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Attendee added successfully",
	})
}

// RemoveAttendee removes a user from the event's attendee set.
func (h *CalendarHandler) RemoveAttendee(c *gin.Context) {
	event, exists := middleware.GetEvent(c)
	if !exists {
		apierrors.InternalError(c, "")
		return
	}

	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.calendarService.RemoveAttendee(event.ID, userID); err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Attendee removed successfully",
	})
}

// RespondToEvent records the caller's response to an event invitation.
func (h *CalendarHandler) RespondToEvent(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	event, exists := middleware.GetEvent(c)
	if !exists {
		apierrors.InternalError(c, "")
		return
	}

	type RespondRequest struct {
		Response models.AttendeeResponse `json:"response" binding:"required"`
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.UnprocessableEntity(c, "Invalid request body")
		return
	}

	if err := h.calendarService.RespondToEvent(event.ID, user.ID, req.Response); err != nil {
		respondCalendarError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Response recorded successfully",
	})
}

func respondCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCalendarNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrAttendeeNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotCalendarOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrCalendarNameRequired),
		errors.Is(err, services.ErrEventTitleRequired),
		errors.Is(err, services.ErrEventTimeInvalid),
		errors.Is(err, services.ErrInvalidAttendeeResponse):
		apierrors.UnprocessableEntity(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}

func parseQueryID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}
