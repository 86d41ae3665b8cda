package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/teamboardhq/teamboard/backend/internal/models"
	"gorm.io/gorm"
)

// InvitationService owns the invitation state machine:
// pending -> accepted | rejected, terminal states are final.
type InvitationService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewInvitationService(db *gorm.DB, notifier *NotificationService) *InvitationService {
	return &InvitationService{db: db, notifier: notifier}
}

// Invite creates a pending invitation for email to join the project.
// Only the leader may invite, and only addresses with an existing
// identity record can be invited. An active duplicate surfaces as
// ErrAlreadyInvited, which callers treat as a benign race.
func (s *InvitationService) Invite(caller *Caller, projectID uint, email string) (*models.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, NewValidationError("email must not be empty")
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("project")
		}
		return nil, err
	}
	if project.LeaderUserID != caller.ID {
		return nil, NewAuthorizationError("only the project leader may invite members")
	}

	var invitee models.User
	if err := s.db.Where("email = ?", email).First(&invitee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user with this email")
		}
		return nil, err
	}

	dedup := models.InvitationDedupKey(projectID, email)
	invitation := models.Invitation{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Email:     email,
		InvitedBy: caller.ID,
		Status:    models.InvitationPending,
		DedupKey:  &dedup,
	}

	// The unique index on dedup_key closes the check/insert gap: a
	// concurrent duplicate loses at the constraint, not at a pre-check.
	if err := s.db.Create(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyInvited
		}
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.QueueInvitationEmail(&invitation, &project, caller)
	}

	return &invitation, nil
}

// Accept turns a pending invitation into a membership. The operation is
// idempotent and safe under concurrent duplicates: when two requests
// race, exactly one membership row results. The loser either observes
// ErrStaleInvitation or sees the membership already present and returns
// success; both are correct outcomes.
func (s *InvitationService) Accept(caller *Caller, invitationID string) (*models.ProjectMember, error) {
	invitation, err := s.findInvitation(invitationID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(invitation.Email, caller.Email) {
		return nil, NewAuthorizationError("this invitation is for a different email address")
	}

	// Already a member: the invitation is resolved, return success
	// without a second insert.
	var existing models.ProjectMember
	err = s.db.Where("project_id = ? AND user_id = ?", invitation.ProjectID, caller.ID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	member := models.ProjectMember{
		ProjectID:   invitation.ProjectID,
		UserID:      caller.ID,
		Role:        models.RoleMember,
		MemberName:  caller.Name,
		MemberEmail: caller.Email,
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		// Re-check inside the transaction: the status may have moved
		// between the read above and now.
		var current models.Invitation
		if err := tx.First(&current, "id = ?", invitationID).Error; err != nil {
			return err
		}
		if current.Status != models.InvitationPending {
			return ErrStaleInvitation
		}

		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		return tx.Model(&current).Update("status", models.InvitationAccepted).Error
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			// Lost the insert race to a concurrent acceptor; the
			// membership exists, which is the outcome the caller wanted.
			if err := s.db.Where("project_id = ? AND user_id = ?", invitation.ProjectID, caller.ID).
				First(&existing).Error; err == nil {
				return &existing, nil
			}
			// The winning row is not readable; report the invitation as
			// resolved elsewhere rather than leaking a storage error.
			return nil, ErrStaleInvitation
		}
		return nil, txErr
	}

	return &member, nil
}

// Reject marks a pending invitation rejected and frees its dedup key so
// the address can be invited again later. No membership side effects.
func (s *InvitationService) Reject(caller *Caller, invitationID string) error {
	invitation, err := s.findInvitation(invitationID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(invitation.Email, caller.Email) {
		return NewAuthorizationError("this invitation is for a different email address")
	}
	if invitation.Status != models.InvitationPending {
		return ErrStaleInvitation
	}

	return s.db.Model(invitation).Updates(map[string]interface{}{
		"status":    models.InvitationRejected,
		"dedup_key": nil,
	}).Error
}

// Get returns an invitation visible to the invitee or the inviter.
func (s *InvitationService) Get(caller *Caller, invitationID string) (*models.Invitation, error) {
	invitation, err := s.findInvitation(invitationID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(invitation.Email, caller.Email) && invitation.InvitedBy != caller.ID {
		return nil, NewAuthorizationError("invitation belongs to another user")
	}
	return invitation, nil
}

// ListForCaller returns pending invitations addressed to the caller's
// email, newest first.
func (s *InvitationService) ListForCaller(caller *Caller) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := s.db.Where("email = ? AND status = ?", strings.ToLower(caller.Email), models.InvitationPending).
		Preload("Project").
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

// ListForProject returns all invitations of a project, for the leader.
func (s *InvitationService) ListForProject(caller *Caller, projectID uint) ([]models.Invitation, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("project")
		}
		return nil, err
	}
	if project.LeaderUserID != caller.ID {
		return nil, NewAuthorizationError("only the project leader may list invitations")
	}

	var invitations []models.Invitation
	err := s.db.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

func (s *InvitationService) findInvitation(id string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := s.db.First(&invitation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("invitation")
		}
		return nil, err
	}
	return &invitation, nil
}
