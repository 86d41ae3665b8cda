package models

import (
	"time"
)

// Project statuses. The status is a workflow label, not a lifecycle
// gate: any status may be set to any other.
const (
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on-hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"
)

// ValidProjectStatus reports whether s is one of the defined statuses.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusArchived:
		return true
	}
	return false
}

// Project is a unit of work with exactly one leader and zero or more
// members. LeaderUserID is set at creation and never reassigned.
// A project exclusively owns its members, invitations and tasks;
// deleting it cascades over all of them.
type Project struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:200;not null" json:"name"`
	Description  string     `gorm:"type:text" json:"description"`
	Status       string     `gorm:"size:20;default:active" json:"status"`
	Tags         []string   `gorm:"type:text;serializer:json" json:"tags"`
	Deadline     *time.Time `json:"deadline"`
	LeaderUserID uint       `gorm:"index;not null" json:"leader_user_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
