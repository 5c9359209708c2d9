package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/selimcan/tasktracker/internal/models"
	"github.com/selimcan/tasktracker/internal/repository"
	"github.com/selimcan/tasktracker/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrPermissionDenied = errors.New("you do not have permission to access this task")
)

// CanAccessTask is the authorization gate for task-level operations: allowed
// iff the actor has global data access or owns the task. Checked after
// existence is confirmed, before any mutation.
func CanAccessTask(actor *models.User, task *models.Task) bool {
	if actor.HasGlobalDataAccess() {
		return true
	}
	return task.UserID == actor.ID
}

// TaskService handles the task lifecycle
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	OwnerID   *uint64
	Completed *bool
	Search    string
	Page      int
	PageSize  int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title         string
	Description   string
	Completed     bool
	Status        string
	Priority      string
	DueDate       *time.Time
	Tags          string
	EstimatedTime *int64
}

// UpdateTaskInput represents input for updating a task. The owner is
// deliberately absent: ownership is immutable through the public surface.
type UpdateTaskInput struct {
	Title              *string
	Description        *string
	Completed          *bool
	Status             *string
	Priority           *string
	DueDate            *time.Time
	ClearDueDate       bool
	Tags               *string
	EstimatedTime      *int64
	ClearEstimatedTime bool
}

// ListTasks returns the actor's visible tasks plus optional narrowing. The
// owner_id override is honored only for actors with global data access and
// silently ignored otherwise.
func (s *TaskService) ListTasks(actor *models.User, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		Completed: input.Completed,
		Search:    input.Search,
		Page:      input.Page,
		PageSize:  input.PageSize,
	}

	if actor.HasGlobalDataAccess() {
		filter.OwnerID = input.OwnerID
	} else {
		filter.OwnerID = &actor.ID
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask returns a task with its owner loaded
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// findBare fetches a task without associations for mutation paths.
func (s *TaskService) findBare(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// CreateTask creates a task owned by the actor
func (s *TaskService) CreateTask(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	fields := fieldErrors{}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		fields.add("title", "Title cannot be blank.")
	}

	status := models.TaskStatus(input.Status)
	if status == "" {
		status = models.TaskStatusPending
	} else if !models.ValidTaskStatus(status) {
		fields.add("status", "Invalid status.")
	}

	priority := models.TaskPriority(input.Priority)
	if priority == "" {
		priority = models.TaskPriorityMedium
	} else if !models.ValidTaskPriority(priority) {
		fields.add("priority", "Invalid priority.")
	}

	if input.EstimatedTime != nil && *input.EstimatedTime < 0 {
		fields.add("estimated_time", "Estimated time cannot be negative.")
	}

	if err := fields.asError(); err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:        actor.ID,
		Title:         title,
		Description:   input.Description,
		Completed:     input.Completed,
		Status:        status,
		Priority:      priority,
		DueDate:       input.DueDate,
		Tags:          input.Tags,
		EstimatedTime: input.EstimatedTime,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logger.Log.Info("Task created",
		zap.Uint64("task_id", task.ID),
		zap.Uint64("owner_id", actor.ID),
	)

	return s.taskRepo.FindByID(task.ID, "User")
}

// UpdateTask applies a partial update after re-checking the gate.
func (s *TaskService) UpdateTask(actor *models.User, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findBare(taskID)
	if err != nil {
		return nil, err
	}
	if !CanAccessTask(actor, task) {
		return nil, ErrPermissionDenied
	}

	fields := fieldErrors{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			fields.add("title", "Title cannot be blank.")
		} else {
			task.Title = title
		}
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}
	if input.Status != nil {
		status := models.TaskStatus(*input.Status)
		if !models.ValidTaskStatus(status) {
			fields.add("status", "Invalid status.")
		} else {
			task.Status = status
		}
	}
	if input.Priority != nil {
		priority := models.TaskPriority(*input.Priority)
		if !models.ValidTaskPriority(priority) {
			fields.add("priority", "Invalid priority.")
		} else {
			task.Priority = priority
		}
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Tags != nil {
		task.Tags = *input.Tags
	}
	if input.ClearEstimatedTime {
		task.EstimatedTime = nil
	} else if input.EstimatedTime != nil {
		if *input.EstimatedTime < 0 {
			fields.add("estimated_time", "Estimated time cannot be negative.")
		} else {
			task.EstimatedTime = input.EstimatedTime
		}
	}

	if err := fields.asError(); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "User")
}

// DeleteTask hard deletes a task after re-checking the gate.
func (s *TaskService) DeleteTask(actor *models.User, taskID uint64) error {
	task, err := s.findBare(taskID)
	if err != nil {
		return err
	}
	if !CanAccessTask(actor, task) {
		return ErrPermissionDenied
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	logger.Log.Info("Task deleted",
		zap.Uint64("task_id", taskID),
		zap.Uint64("actor_id", actor.ID),
	)
	return nil
}
