package models

import (
	"time"
)

// Member roles within a project.
const (
	RoleLeader = "leader"
	RoleMember = "member"
)

// ProjectMember represents a user's membership in a project. The
// composite unique index is the store-level guarantee behind
// "at most one membership per (project, user)"; concurrent joins race
// on it instead of on an application check.
//
// MemberName and MemberEmail are display caches captured at join time.
// The identity source of truth remains the users table; these are never
// auto-synced.
//
// Rows are hard-deleted: a removed member must be able to rejoin, so the
// unique index slot has to actually free up.
type ProjectMember struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"project_id"`
	Project     *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID      uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role        string    `gorm:"size:20;default:member" json:"role"` // leader, member
	MemberName  string    `gorm:"size:100" json:"member_name"`
	MemberEmail string    `gorm:"size:255" json:"member_email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ProjectMember) TableName() string { return "project_members" }
