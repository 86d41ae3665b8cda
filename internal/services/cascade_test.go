package services

import (
	"errors"
	"testing"

	"github.com/teamboardhq/teamboard/backend/internal/models"
	"gorm.io/gorm"
)

type cascadeFixture struct {
	leader  *Caller
	member  *Caller
	project *models.Project
	tasks   []*models.Task
}

// buildCascadeFixture creates a project with a leader and one member,
// three tasks (two assigned to the member), the member's comments on two
// tasks and a comment by the leader that must survive removal.
func buildCascadeFixture(t *testing.T, db *gorm.DB) *cascadeFixture {
	t.Helper()

	leader := createTestUser(t, db, "alice@example.com", "Alice")
	member := createTestUser(t, db, "bob@example.com", "Bob")
	project := createTestProject(t, db, leader, "Board")
	addTestMember(t, db, leader, member, project.ID)

	taskSvc := newTaskService(db)
	var tasks []*models.Task
	for i, assignee := range []*uint{&member.ID, &member.ID, nil} {
		task, err := taskSvc.Create(leader, project.ID, &CreateTaskRequest{
			Title:      "Task",
			AssignedTo: assignee,
		})
		if err != nil {
			t.Fatalf("Create task %d failed: %v", i, err)
		}
		tasks = append(tasks, task)
	}

	commentSvc := NewCommentService(db, NewMembershipService(db))
	if _, err := commentSvc.Add(member, tasks[0].ID, "by bob"); err != nil {
		t.Fatalf("Add comment failed: %v", err)
	}
	if _, err := commentSvc.Add(member, tasks[1].ID, "also by bob"); err != nil {
		t.Fatalf("Add comment failed: %v", err)
	}
	if _, err := commentSvc.Add(leader, tasks[0].ID, "by alice"); err != nil {
		t.Fatalf("Add comment failed: %v", err)
	}

	return &cascadeFixture{leader: leader, member: member, project: project, tasks: tasks}
}

func TestRemoveMember_Cascade(t *testing.T) {
	db := setupTestDB(t)
	f := buildCascadeFixture(t, db)

	svc := NewMembershipService(db)
	if err := svc.RemoveMember(f.leader, f.project.ID, f.member.ID); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}

	// The member's comments are gone, the leader's survives.
	var comments []models.Comment
	if err := db.Find(&comments).Error; err != nil {
		t.Fatalf("load comments: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("expected 1 surviving comment, got %d", len(comments))
	}
	if comments[0].UserID != f.leader.ID {
		t.Errorf("surviving comment author = %d, expected leader %d", comments[0].UserID, f.leader.ID)
	}

	// The member's invitation record is gone, so a later re-invite works.
	var invitationCount int64
	db.Model(&models.Invitation{}).Where("email = ?", f.member.Email).Count(&invitationCount)
	if invitationCount != 0 {
		t.Errorf("expected member's invitations deleted, got %d", invitationCount)
	}

	// Tasks assigned to the member now belong to the leader; the
	// unassigned task is untouched.
	var tasks []models.Task
	if err := db.Order("id ASC").Find(&tasks).Error; err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks to survive, got %d", len(tasks))
	}
	for _, task := range tasks[:2] {
		if task.AssignedTo == nil || *task.AssignedTo != f.leader.ID {
			t.Errorf("task %d: expected reassignment to leader, got %v", task.ID, task.AssignedTo)
		}
	}
	if tasks[2].AssignedTo != nil {
		t.Errorf("unassigned task should stay unassigned, got %v", *tasks[2].AssignedTo)
	}

	// Task creator records are untouched.
	for _, task := range tasks {
		if task.CreatedBy != f.leader.ID {
			t.Errorf("task %d: CreatedBy changed to %d", task.ID, task.CreatedBy)
		}
	}

	// The membership row is gone.
	var memberCount int64
	db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", f.project.ID, f.member.ID).
		Count(&memberCount)
	if memberCount != 0 {
		t.Errorf("expected membership deleted, got %d rows", memberCount)
	}

	// The member can be invited again afterwards.
	invSvc := NewInvitationService(db, nil)
	if _, err := invSvc.Invite(f.leader, f.project.ID, f.member.Email); err != nil {
		t.Errorf("re-invite after removal failed: %v", err)
	}
}

func TestRemoveMember_RollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	f := buildCascadeFixture(t, db)

	// Force the final delete step to fail so the earlier steps must be
	// rolled back.
	err := db.Callback().Delete().Before("gorm:delete").Register("abort_member_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "project_members" {
			tx.AddError(errors.New("storage failure"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	defer db.Callback().Delete().Remove("abort_member_delete")

	svc := NewMembershipService(db)
	removeErr := svc.RemoveMember(f.leader, f.project.ID, f.member.ID)

	var cascadeErr *CascadeError
	if !errors.As(removeErr, &cascadeErr) {
		t.Fatalf("expected CascadeError, got %v", removeErr)
	}

	// Nothing moved: comments, invitations, assignments and the
	// membership all still exist.
	var commentCount, invitationCount, memberCount int64
	db.Model(&models.Comment{}).Count(&commentCount)
	db.Model(&models.Invitation{}).Where("email = ?", f.member.Email).Count(&invitationCount)
	db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", f.project.ID, f.member.ID).
		Count(&memberCount)

	if commentCount != 3 {
		t.Errorf("expected all 3 comments after rollback, got %d", commentCount)
	}
	if invitationCount != 1 {
		t.Errorf("expected member's invitation after rollback, got %d", invitationCount)
	}
	if memberCount != 1 {
		t.Errorf("expected membership intact after rollback, got %d", memberCount)
	}

	var task models.Task
	if err := db.First(&task, f.tasks[0].ID).Error; err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if task.AssignedTo == nil || *task.AssignedTo != f.member.ID {
		t.Errorf("assignment must be rolled back, got %v", task.AssignedTo)
	}
}
