package services

import (
	"github.com/teamboardhq/teamboard/backend/internal/models"
	"gorm.io/gorm"
)

// CascadeCoordinator runs the multi-entity cleanup triggered by member
// removal. It is the only component permitted to span the membership,
// invitation and task tables in a single transaction; every other
// service mutates only the entities it owns.
type CascadeCoordinator struct {
	db *gorm.DB
}

func NewCascadeCoordinator(db *gorm.DB) *CascadeCoordinator {
	return &CascadeCoordinator{db: db}
}

// RemoveMember atomically:
//  1. deletes every comment the member authored on the project's tasks,
//  2. deletes every invitation for the member's email in the project,
//     so re-invitation stays possible,
//  3. reassigns every task assigned to the member to the leader,
//  4. deletes the membership row.
//
// If any step fails the whole transaction rolls back; the caller never
// observes a partial cascade.
func (c *CascadeCoordinator) RemoveMember(project *models.Project, member *models.ProjectMember) error {
	err := c.db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", project.ID)
		if err := tx.Where("user_id = ? AND task_id IN (?)", member.UserID, taskIDs).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ? AND email = ?", project.ID, member.MemberEmail).
			Delete(&models.Invitation{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Task{}).
			Where("project_id = ? AND assigned_to = ?", project.ID, member.UserID).
			Update("assigned_to", project.LeaderUserID).Error; err != nil {
			return err
		}

		return tx.Delete(&models.ProjectMember{}, member.ID).Error
	})
	if err != nil {
		return &CascadeError{Op: "member removal", Err: err}
	}
	return nil
}
