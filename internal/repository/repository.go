package repository

import (
	"time"

	"github.com/itjee/jwp-pms-v1/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// List retrieves users with pagination
	List(page, pageSize int) ([]models.User, int64, error)

	// Deactivate marks a user inactive. Users are never physically removed.
	Deactivate(id uint64) error

	// TouchLastActive updates the user's last-active timestamp. Best effort:
	// the field is advisory telemetry, last write wins.
	TouchLastActive(id uint64, at time.Time) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// CreateWithOwner creates a project and the creator's OWNER membership in
	// a single transaction. A project must never exist without an owner.
	CreateWithOwner(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// List retrieves the projects with the given IDs, paginated
	List(ids []uint64, page, pageSize int) ([]models.Project, int64, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete soft deletes a project and deactivates its memberships
	Delete(id uint64) error

	// AddMember adds or reactivates a membership row
	AddMember(member *models.ProjectMember) error

	// RemoveMember deactivates a membership. Removing the sole active OWNER
	// fails with ErrLastProjectOwner; the check and the write run in one
	// transaction under a row lock.
	RemoveMember(projectID, userID uint64) error

	// FindMember finds an active membership
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)

	// ListMembers lists the active members of a project
	ListMembers(projectID uint64) ([]models.ProjectMember, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks matching the filter
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task and deactivates its assignments
	Delete(id uint64) error

	// Assign adds or reactivates an assignment row
	Assign(taskID, userID, assignedBy uint64) error

	// Unassign deactivates an assignment row
	Unassign(taskID, userID uint64) error

	// FindAssignment finds an active assignment
	FindAssignment(taskID, userID uint64) (*models.TaskAssignment, error)
}

// TaskFilter holds filtering options for listing tasks. ProjectIDs is the
// caller's pre-resolved accessible-project set; UserID widens the result to
// tasks the user created or is assigned to outside those projects.
type TaskFilter struct {
	ProjectIDs    []uint64
	UserID        uint64
	Admin         bool
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	AssignedTo    *uint64
	DueDateFrom   *time.Time
	DueDateTo     *time.Time
	SortByDueDate bool
	Page          int
	PageSize      int
}

// CalendarRepository defines the interface for calendar and event data access
type CalendarRepository interface {
	// CreateCalendar creates a new calendar
	CreateCalendar(calendar *models.Calendar) error

	// FindCalendarByID finds a calendar by ID
	FindCalendarByID(id uint64) (*models.Calendar, error)

	// ListCalendars retrieves the calendars with the given IDs
	ListCalendars(ids []uint64) ([]models.Calendar, error)

	// UpdateCalendar updates a calendar
	UpdateCalendar(calendar *models.Calendar) error

	// DeleteCalendar soft deletes a calendar and its events
	DeleteCalendar(id uint64) error

	// CreateEvent creates a new event
	CreateEvent(event *models.Event) error

	// FindEventByID finds an event by ID with optional preloading
	FindEventByID(id uint64, preload ...string) (*models.Event, error)

	// ListEvents retrieves events on the given calendars within a time range
	ListEvents(calendarIDs []uint64, from, to *time.Time) ([]models.Event, error)

	// UpdateEvent updates an event
	UpdateEvent(event *models.Event) error

	// DeleteEvent soft deletes an event and removes its attendee rows
	DeleteEvent(id uint64) error

	// AddAttendee adds an attendee row. Idempotent: adding the same attendee
	// twice leaves exactly one row.
	AddAttendee(attendee *models.EventAttendee) error

	// RemoveAttendee removes an attendee row
	RemoveAttendee(eventID, userID uint64) error

	// UpdateAttendeeResponse records an attendee's response
	UpdateAttendeeResponse(eventID, userID uint64, response models.AttendeeResponse) error
}
