package repository

import (
	"github.com/selimcan/tasktracker/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// Update persists changes to a user
	Update(user *models.User) error

	// FindByID finds a user by ID with the role preloaded
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(email string) (*models.User, error)

	// List returns users ordered by id. A non-nil onlyID restricts the
	// result to that single user.
	List(onlyID *uint64) ([]models.User, error)

	// Delete hard deletes a user; owned tasks go with it.
	Delete(id uint64) error
}

// RoleRepository defines the interface for the role catalog
type RoleRepository interface {
	// FindByCode finds a role by its code
	FindByCode(code models.RoleCode) (*models.UserType, error)

	// List returns the catalog ordered by name
	List() ([]models.UserType, error)

	// Delete removes a role; fails with ErrRoleInUse while users reference it
	Delete(id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete hard deletes a task
	Delete(id uint64) error
}

// TaskFilter holds the narrowing options for listing tasks. OwnerID carries
// the base visibility restriction decided upstream by the authorization gate.
type TaskFilter struct {
	OwnerID   *uint64
	Completed *bool
	Search    string
	Page      int
	PageSize  int
}
