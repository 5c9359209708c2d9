package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/selimcan/tasktracker/internal/dto"
	apierrors "github.com/selimcan/tasktracker/internal/errors"
	"github.com/selimcan/tasktracker/internal/middleware"
	"github.com/selimcan/tasktracker/internal/services"
	"github.com/selimcan/tasktracker/internal/utils"
)

// TaskHandler coordinates task-related HTTP handlers.
type TaskHandler struct {
	taskService     *services.TaskService
	defaultPageSize int
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, defaultPageSize int) *TaskHandler {
	return &TaskHandler{
		taskService:     taskService,
		defaultPageSize: defaultPageSize,
	}
}

// ListTasks returns the actor's visible tasks with optional filters:
// completed, search, user_id (privileged actors only), page, page_size.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	input := services.ListTasksInput{
		Search: c.Query("search"),
	}

	if completedStr := c.Query("completed"); completedStr != "" {
		completed, err := strconv.ParseBool(completedStr)
		if err != nil {
			apierrors.ValidationFailed(c, "Invalid filter.", map[string]string{
				"completed": "Must be a boolean value.",
			})
			return
		}
		input.Completed = &completed
	}

	if ownerStr := c.Query("user_id"); ownerStr != "" {
		ownerID, err := strconv.ParseUint(ownerStr, 10, 64)
		if err != nil {
			apierrors.ValidationFailed(c, "Invalid filter.", map[string]string{
				"user_id": "Must be a positive integer.",
			})
			return
		}
		input.OwnerID = &ownerID
	}

	params := utils.GetPaginationParams(c, h.defaultPageSize)
	input.Page = params.Page
	input.PageSize = params.PageSize

	tasks, total, err := h.taskService.ListTasks(actor, input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	next, previous := utils.PageLinks(c, params, total)
	c.JSON(http.StatusOK, dto.ToPaginatedTasksResponse(tasks, total, next, previous))
}

// taskPayload is the JSON shape shared by create and update requests. The
// owner is not part of it: tasks always belong to the actor that created
// them.
type taskPayload struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Completed     *bool      `json:"completed"`
	Status        *string    `json:"status"`
	Priority      *string    `json:"priority"`
	DueDate       *time.Time `json:"due_date"`
	Tags          *string    `json:"tags"`
	EstimatedTime *int64     `json:"estimated_time"`
}

// CreateTask creates a new task owned by the actor.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req taskPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateTaskInput{
		DueDate:       req.DueDate,
		EstimatedTime: req.EstimatedTime,
	}
	if req.Title != nil {
		input.Title = *req.Title
	}
	if req.Description != nil {
		input.Description = *req.Description
	}
	if req.Completed != nil {
		input.Completed = *req.Completed
	}
	if req.Status != nil {
		input.Status = *req.Status
	}
	if req.Priority != nil {
		input.Priority = *req.Priority
	}
	if req.Tags != nil {
		input.Tags = *req.Tags
	}

	task, err := h.taskService.CreateTask(actor, input)
	if err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			apierrors.ValidationFailed(c, "Task creation failed.", ve.Fields)
			return
		}
		apierrors.InternalError(c, "Failed to create task")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully.",
		"task":    dto.ToTaskDTO(*task),
	})
}

// GetTask returns the task resolved by RequireTaskAccess.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, exists := middleware.GetContextTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update to the gated task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	task, exists := middleware.GetContextTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	// Raw map first so "field: null" clears and "field absent" keeps.
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, fieldErr := updateInputFromRaw(raw)
	if fieldErr != nil {
		apierrors.ValidationFailed(c, "Task update failed.", fieldErr)
		return
	}

	updated, err := h.taskService.UpdateTask(actor, task.ID, input)
	if err != nil {
		var ve *services.ValidationError
		switch {
		case errors.As(err, &ve):
			apierrors.ValidationFailed(c, "Task update failed.", ve.Fields)
		case errors.Is(err, services.ErrTaskNotFound):
			apierrors.NotFound(c, "Task not found.")
		case errors.Is(err, services.ErrPermissionDenied):
			apierrors.Forbidden(c, err.Error())
		default:
			apierrors.InternalError(c, "Failed to update task")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully.",
		"task":    dto.ToTaskDTO(*updated),
	})
}

// DeleteTask hard deletes the gated task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	task, exists := middleware.GetContextTask(c)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(actor, task.ID); err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			apierrors.NotFound(c, "Task not found.")
		case errors.Is(err, services.ErrPermissionDenied):
			apierrors.Forbidden(c, err.Error())
		default:
			apierrors.InternalError(c, "Failed to delete task")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// updateInputFromRaw maps a raw JSON object onto UpdateTaskInput,
// distinguishing absent fields from explicit nulls. Unknown or mistyped
// values come back as field errors.
func updateInputFromRaw(raw map[string]any) (services.UpdateTaskInput, map[string]string) {
	var input services.UpdateTaskInput

	if value, ok := raw["title"]; ok {
		s, ok := value.(string)
		if !ok {
			return input, map[string]string{"title": "Must be a string."}
		}
		input.Title = &s
	}
	if value, ok := raw["description"]; ok {
		s, ok := value.(string)
		if !ok {
			return input, map[string]string{"description": "Must be a string."}
		}
		input.Description = &s
	}
	if value, ok := raw["completed"]; ok {
		b, ok := value.(bool)
		if !ok {
			return input, map[string]string{"completed": "Must be a boolean value."}
		}
		input.Completed = &b
	}
	if value, ok := raw["status"]; ok {
		s, ok := value.(string)
		if !ok {
			return input, map[string]string{"status": "Must be a string."}
		}
		input.Status = &s
	}
	if value, ok := raw["priority"]; ok {
		s, ok := value.(string)
		if !ok {
			return input, map[string]string{"priority": "Must be a string."}
		}
		input.Priority = &s
	}
	if value, ok := raw["due_date"]; ok {
		if value == nil {
			input.ClearDueDate = true
		} else {
			s, ok := value.(string)
			if !ok {
				return input, map[string]string{"due_date": "Must be an RFC 3339 timestamp."}
			}
			parsed, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return input, map[string]string{"due_date": "Must be an RFC 3339 timestamp."}
			}
			input.DueDate = &parsed
		}
	}
	if value, ok := raw["tags"]; ok {
		s, ok := value.(string)
		if !ok {
			return input, map[string]string{"tags": "Must be a string."}
		}
		input.Tags = &s
	}
	if value, ok := raw["estimated_time"]; ok {
		if value == nil {
			input.ClearEstimatedTime = true
		} else {
			f, ok := value.(float64)
			if !ok || f != float64(int64(f)) {
				return input, map[string]string{"estimated_time": "Must be a whole number of minutes."}
			}
			minutes := int64(f)
			input.EstimatedTime = &minutes
		}
	}

	return input, nil
}
