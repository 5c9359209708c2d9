package constants

// Pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MinPage         = 1
)

// Password policy
const MinPasswordLength = 8

// Gin context keys
const (
	ContextKeyUser = "current_user"
	ContextKeyTask = "task"
)
