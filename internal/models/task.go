package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// ValidTaskStatus reports whether status is one of the task states.
func ValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// ValidTaskPriority reports whether priority is one of the priority levels.
func ValidTaskPriority(priority TaskPriority) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task belongs to exactly one owner; the owner reference is set at creation
// and never reassigned through the public update surface. Deleting the owner
// cascades to their tasks. No soft delete.
type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	UserID      uint64       `gorm:"not null;index" json:"user_id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Completed   bool         `gorm:"not null;default:false" json:"completed"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	DueDate     *time.Time   `json:"due_date"`
	Tags        string       `gorm:"type:varchar(255)" json:"tags"`
	// EstimatedTime is a whole number of minutes; never negative.
	EstimatedTime *int64     `json:"estimated_time"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeSave keeps completed_at in lockstep with the completed flag: set once
// when completed becomes true (stable across repeated saves), cleared when it
// goes back to false. The timestamp is never accepted as direct input.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	if t.Completed {
		if t.CompletedAt == nil {
			now := time.Now()
			t.CompletedAt = &now
		}
	} else {
		t.CompletedAt = nil
	}
	return nil
}
