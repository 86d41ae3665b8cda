package models

import (
	"time"
)

// Task statuses. The four columns of the board are labels, not a strict
// pipeline: any status may be set directly to any other.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusReview     = "review"
	TaskStatusDone       = "done"
)

// TaskStatuses lists the board columns in display order.
var TaskStatuses = []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone}

// ValidTaskStatus reports whether s is one of the four board columns.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

// Task is a work item on a project board. AssignedTo, when set, must
// name a current member of the same project; the engine re-validates
// this on every write since there is no foreign key backing it.
// Labels are an ordered list; duplicates are allowed, empty strings are
// filtered on every write.
//
// A task exclusively owns its comments and is hard-deleted together
// with them.
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"index;not null" json:"project_id"`
	Project     *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:20;default:todo" json:"status"`
	AssignedTo  *uint     `gorm:"index" json:"assigned_to"`
	CreatedBy   uint      `gorm:"not null" json:"created_by"`
	Labels      []string  `gorm:"type:text;serializer:json" json:"labels"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }
