package models

import (
	"time"
)

// Comment is a discussion entry on a task. CommentorName is a display
// cache captured at write time, not the identity source of truth.
// Only the author may edit; the project leader may additionally delete.
type Comment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TaskID        uint      `gorm:"index;not null" json:"task_id"`
	Task          *Task     `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	CommentorName string    `gorm:"size:100" json:"commentor_name"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Comment) TableName() string { return "comments" }
