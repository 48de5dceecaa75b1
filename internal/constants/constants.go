package constants

import "time"

// Session and context keys
const (
	SessionCookieName    = "kanban_session"
	ContextKeyUserID     = "user_id"
	ContextKeyRequestID  = "request_id"
	ContextKeyTask       = "task"
	SessionKeyUserEmail  = "user_email"
	SessionKeyUserName   = "user_name"
	SessionKeySearchTerm = "view_search_term"
	SessionKeyLabels     = "view_selected_labels"
	SessionKeySortBy     = "view_sort_by"
	SessionKeySortOrder  = "view_sort_order"
	HeaderRequestID      = "X-Request-ID"
	SessionMaxAgeSeconds = 86400 * 7
	DefaultAuthDelay     = time.Second
	DefaultEventsChannel = "kanban:board-events"
)

// Validation limits
const (
	MinPasswordLength = 6
	MinNameLength     = 2
	MinSeverity       = 0.0
	MaxSeverity       = 10.0
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MaxAIGeneratedTasks caps the number of drafts accepted from one AI response.
const MaxAIGeneratedTasks = 20

// StatusClientClosedRequest is written when the caller went away mid-request.
const StatusClientClosedRequest = 499
