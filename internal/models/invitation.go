package models

import (
	"fmt"
	"time"
)

// Invitation statuses. Pending is the only non-terminal state:
// pending -> accepted | rejected, no transition out of a terminal state.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRejected = "rejected"
)

// Invitation is a proposal for a specific email address to join a
// specific project.
//
// DedupKey holds "projectID:email" while the invitation is pending or
// accepted and is cleared on rejection. Its unique index enforces
// "at most one active invitation per (project, email)" in the store,
// so the check-then-insert gap is closed at the constraint level and a
// rejected invitation never blocks re-invitation.
type Invitation struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"` // uuid
	ProjectID uint      `gorm:"index;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Email     string    `gorm:"size:255;index;not null" json:"email"`
	InvitedBy uint      `gorm:"not null" json:"invited_by"`
	Status    string    `gorm:"size:20;default:pending" json:"status"`
	DedupKey  *string   `gorm:"size:300;uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Invitation) TableName() string { return "invitations" }

// InvitationDedupKey builds the uniqueness key for an active invitation.
func InvitationDedupKey(projectID uint, email string) string {
	return fmt.Sprintf("%d:%s", projectID, email)
}
