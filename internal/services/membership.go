package services

import (
	"errors"
	"strings"
	"time"

	"github.com/teamboardhq/teamboard/backend/internal/models"
	"gorm.io/gorm"
)

// MembershipService owns the Project/ProjectMember lifecycle and the
// leader invariant: every project has exactly one leader membership and
// it always names the project's immutable creator.
type MembershipService struct {
	db      *gorm.DB
	cascade *CascadeCoordinator
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db, cascade: NewCascadeCoordinator(db)}
}

type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Tags        []string   `json:"tags"`
	Deadline    *time.Time `json:"deadline"`
}

// UpdateProjectRequest is an explicit patch: nil fields are left
// untouched. Unknown fields are rejected at binding time.
type UpdateProjectRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Status        *string    `json:"status"`
	Tags          *[]string  `json:"tags"`
	Deadline      *time.Time `json:"deadline"`
	ClearDeadline bool       `json:"clear_deadline"`
}

// CreateProject creates a project led by the caller. The project row and
// the leader membership row are written in one transaction: neither may
// ever exist without the other.
func (s *MembershipService) CreateProject(caller *Caller, req *CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("project name must not be empty")
	}

	status := req.Status
	if status == "" {
		status = models.ProjectStatusActive
	}
	if !models.ValidProjectStatus(status) {
		return nil, NewValidationError("invalid project status %q", status)
	}

	project := models.Project{
		Name:         name,
		Description:  req.Description,
		Status:       status,
		Tags:         filterEmpty(req.Tags),
		Deadline:     req.Deadline,
		LeaderUserID: caller.ID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		leader := models.ProjectMember{
			ProjectID:   project.ID,
			UserID:      caller.ID,
			Role:        models.RoleLeader,
			MemberName:  caller.Name,
			MemberEmail: caller.Email,
		}
		return tx.Create(&leader).Error
	})
	if err != nil {
		return nil, err
	}

	return &project, nil
}

// GetProject returns a project the caller belongs to.
func (s *MembershipService) GetProject(caller *Caller, projectID uint) (*models.Project, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireMember(caller.ID, projectID); err != nil {
		return nil, err
	}
	return project, nil
}

// ListProjects returns every project the caller is a member of, newest
// first.
func (s *MembershipService) ListProjects(caller *Caller) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", caller.ID).
		Order("projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// UpdateProject applies a leader-only patch. The leader itself is never
// reassigned through this path.
func (s *MembershipService) UpdateProject(caller *Caller, projectID uint, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}
	if project.LeaderUserID != caller.ID {
		return nil, NewAuthorizationError("only the project leader may update the project")
	}

	updates := make(map[string]interface{})

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewValidationError("project name must not be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		if !models.ValidProjectStatus(*req.Status) {
			return nil, NewValidationError("invalid project status %q", *req.Status)
		}
		updates["status"] = *req.Status
	}
	if req.Tags != nil {
		updates["tags"] = filterEmpty(*req.Tags)
	}
	if req.ClearDeadline {
		updates["deadline"] = nil
	} else if req.Deadline != nil {
		updates["deadline"] = *req.Deadline
	}

	if len(updates) == 0 {
		return project, nil
	}

	if err := s.db.Model(project).Updates(updates).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes a project and everything it owns: comments on
// its tasks, tasks, invitations and memberships, in one transaction.
func (s *MembershipService) DeleteProject(caller *Caller, projectID uint) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}
	if project.LeaderUserID != caller.ID {
		return NewAuthorizationError("only the project leader may delete the project")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", projectID)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, projectID).Error
	})
	if err != nil {
		return &CascadeError{Op: "project deletion", Err: err}
	}
	return nil
}

// ListMembers returns all members of a project. Callers are expected to
// gate access with RequireMember.
func (s *MembershipService) ListMembers(projectID uint) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	err := s.db.Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

// RemoveMember removes a non-leader member from a project, cascading
// over their comments, invitations and task assignments atomically.
func (s *MembershipService) RemoveMember(caller *Caller, projectID, memberUserID uint) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}
	if project.LeaderUserID != caller.ID {
		return NewAuthorizationError("only the project leader may remove members")
	}
	if memberUserID == project.LeaderUserID {
		return NewInvariantError("the project leader cannot be removed")
	}

	var member models.ProjectMember
	if err := s.db.Where("project_id = ? AND user_id = ?", projectID, memberUserID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("project member")
		}
		return err
	}

	return s.cascade.RemoveMember(project, &member)
}

// RequireMember fails with an AuthorizationError unless userID is a
// current member of the project.
func (s *MembershipService) RequireMember(userID, projectID uint) error {
	var count int64
	if err := s.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return NewAuthorizationError("caller is not a member of this project")
	}
	return nil
}

func (s *MembershipService) findProject(projectID uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("project")
		}
		return nil, err
	}
	return &project, nil
}

// filterEmpty drops empty strings from a label or tag list, preserving
// order and duplicates.
func filterEmpty(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
