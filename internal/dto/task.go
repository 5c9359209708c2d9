package dto

import (
	"time"

	"github.com/selimcan/tasktracker/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID            uint64              `json:"id"`
	UserID        uint64              `json:"user_id"`
	UserName      string              `json:"user_name,omitempty"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Completed     bool                `json:"completed"`
	Status        models.TaskStatus   `json:"status"`
	Priority      models.TaskPriority `json:"priority"`
	DueDate       *time.Time          `json:"due_date"`
	Tags          string              `json:"tags"`
	EstimatedTime *int64              `json:"estimated_time"`
	CompletedAt   *time.Time          `json:"completed_at"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// PaginatedTasksResponse is the list envelope: the count reflects the whole
// filtered set while results carries the current page.
type PaginatedTasksResponse struct {
	Count    int64     `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []TaskDTO `json:"results"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:            task.ID,
		UserID:        task.UserID,
		Title:         task.Title,
		Description:   task.Description,
		Completed:     task.Completed,
		Status:        task.Status,
		Priority:      task.Priority,
		DueDate:       task.DueDate,
		Tags:          task.Tags,
		EstimatedTime: task.EstimatedTime,
		CompletedAt:   task.CompletedAt,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}

	// Owner display name only when the relation was preloaded
	if task.User.ID != 0 {
		dto.UserName = task.User.FullName()
	}

	return dto
}

// ToPaginatedTasksResponse converts a page of tasks to the list envelope
func ToPaginatedTasksResponse(tasks []models.Task, total int64, next, previous *string) PaginatedTasksResponse {
	results := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		results[i] = ToTaskDTO(task)
	}
	return PaginatedTasksResponse{
		Count:    total,
		Next:     next,
		Previous: previous,
		Results:  results,
	}
}
