package constants

// Context keys
const (
	ContextKeyUser     = "current_user"
	ContextKeyProject  = "project"
	ContextKeyTask     = "task"
	ContextKeyCalendar = "calendar"
	ContextKeyEvent    = "event"
)

// Password rules
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
