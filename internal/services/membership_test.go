package services

import (
	"errors"
	"testing"
	"time"

	"github.com/teamboardhq/teamboard/backend/internal/models"
)

func TestCreateProject_CreatesLeaderMembership(t *testing.T) {
	db := setupTestDB(t)
	leader := createTestUser(t, db, "alice@example.com", "Alice")

	svc := NewMembershipService(db)
	project, err := svc.CreateProject(leader, &CreateProjectRequest{
		Name: "Launch Plan",
		Tags: []string{"q3", "", "infra"},
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	if project.LeaderUserID != leader.ID {
		t.Errorf("LeaderUserID = %d, expected %d", project.LeaderUserID, leader.ID)
	}
	if project.Status != models.ProjectStatusActive {
		t.Errorf("Status = %q, expected %q", project.Status, models.ProjectStatusActive)
	}
	if len(project.Tags) != 2 {
		t.Errorf("Tags = %v, expected empty entries dropped", project.Tags)
	}

	var member models.ProjectMember
	if err := db.Where("project_id = ? AND user_id = ?", project.ID, leader.ID).First(&member).Error; err != nil {
		t.Fatalf("leader membership missing: %v", err)
	}
	if member.Role != models.RoleLeader {
		t.Errorf("Role = %q, expected %q", member.Role, models.RoleLeader)
	}
	if member.MemberEmail != leader.Email {
		t.Errorf("MemberEmail = %q, expected %q", member.MemberEmail, leader.Email)
	}
}

func TestCreateProject_EmptyName(t *testing.T) {
	db := setupTestDB(t)
	leader := createTestUser(t, db, "alice@example.com", "Alice")

	svc := NewMembershipService(db)
	_, err := svc.CreateProject(leader, &CreateProjectRequest{Name: "   "})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateProject_InvalidStatus(t *testing.T) {
	db := setupTestDB(t)
	leader := createTestUser(t, db, "alice@example.com", "Alice")

	svc := NewMembershipService(db)
	_, err := svc.CreateProject(leader, &CreateProjectRequest{Name: "P", Status: "paused"})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestGetProject_NonMemberDenied(t *testing.T) {
	db := setupTestDB(t)
	leader := createTestUser(t, db, "alice@example.com", "Alice")
	outsider := createTestUser(t, db, "bob@example.com", "Bob")
	project := createTestProject(t, db, leader, "Secret")

	svc := NewMembershipService(db)
	_, err := svc.GetProject(outsider, project.ID)

	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestListProjects_OnlyMemberships(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice@example.com", "Alice")
	bob := createTestUser(t, db, "bob@example.com", "Bob")

	createTestProject(t, db, alice, "Alpha")
	shared := createTestProject(t, db, alice, "Shared")
	createTestProject(t, db, bob, "Bravo")
	addTestMember(t, db, alice, bob, shared.ID)

	svc := NewMembershipService(db)
	projects, err := svc.ListProjects(bob)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects for bob, got %d", len(projects))
	}
	for _, p := range projects {
		if p.Name == "Alpha" {
			t.Error("bob should not see Alpha")
		}
	}
}

func TestUpdateProject_LeaderOnly(t *testing.T) {
	db := setupTestDB(t)
	leader := createTestUser(t, db, "alice@example.com", "Alice")
	member := createTestUser(t, db, "bob@example.com", "Bob")
	project := createTestProject(t, db, leader, "Board")
	addTestMember(t, db, leader, member, project.ID)

	svc := NewMembershipService(db)
	name := "Renamed"
	_, err := svc.UpdateProject(member, project.ID, &UpdateProjectRequest{Name: &name})

	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestUpdateProject_PartialPatch(t *testing.T) {
	db := setupTestDB(t)
	leader := createTestUser(t, db, "alice@example.com", "Alice")

	svc := NewMembershipService(db)
	deadline := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	project, err := svc.CreateProject(leader, &CreateProjectRequest{
		Name:        "Board",
		Description: "original",
		Deadline:    &deadline,
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	status := models.ProjectStatusOnHold
	if _, err := svc.UpdateProject(leader, project.ID, &UpdateProjectRequest{Status: &status}); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}

	var got models.Project
	if err := db.First(&got, project.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Status != models.ProjectStatusOnHold {
		t.Errorf("Status = %q, expected %q", got.Status, models.ProjectStatusOnHold)
	}
	if got.Description != "original" {
		t.Errorf("Description = %q, expected untouched", got.Description)
	}
	if got.Deadline == nil {
		t.Error("Deadline should be untouched by a status-only patch")
	}

	// Clearing the deadline is a distinct signal from omitting it.
	if _, err := svc.UpdateProject(leader, project.ID, &UpdateProjectRequest{ClearDeadline: true}); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}
	// Reset before reloading: gorm leaves a previously populated field
	// untouched when the scanned column is NULL.
	got = models.Project{}
	if err := db.First(&got, project.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Deadline != nil {
		t.Error("Deadline should be cleared")
	}
}

func TestDeleteProject_CascadesEverything(t *testing.T) {
	db := setupTestDB(t)
	leader := createTestUser(t, db, "alice@example.com", "Alice")
	member := createTestUser(t, db, "bob@example.com", "Bob")
	project := createTestProject(t, db, leader, "Doomed")
	addTestMember(t, db, leader, member, project.ID)

	tasks := NewTaskService(db, NewMembershipService(db))
	task, err := tasks.Create(leader, project.ID, &CreateTaskRequest{Title: "T1"})
	if err != nil {
		t.Fatalf("Create task failed: %v", err)
	}
	comments := NewCommentService(db, NewMembershipService(db))
	if _, err := comments.Add(member, task.ID, "hello"); err != nil {
		t.Fatalf("Add comment failed: %v", err)
	}

	svc := NewMembershipService(db)
	if err := svc.DeleteProject(leader, project.ID); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}

	counts := map[string]interface{}{
		"projects":        &models.Project{},
		"project_members": &models.ProjectMember{},
		"invitations":     &models.Invitation{},
		"tasks":           &models.Task{},
		"comments":        &models.Comment{},
	}
	for table, model := range counts {
		var n int64
		if err := db.Model(model).Count(&n).Error; err != nil {
			t.Fatalf("count %s failed: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s: expected 0 rows after project deletion, got %d", table, n)
		}
	}
}

func TestRemoveMember_LeaderCannotBeRemoved(t *testing.T) {
	db := setupTestDB(t)
	leader := createTestUser(t, db, "alice@example.com", "Alice")
	project := createTestProject(t, db, leader, "Board")

	svc := NewMembershipService(db)
	err := svc.RemoveMember(leader, project.ID, leader.ID)

	var invariantErr *InvariantError
	if !errors.As(err, &invariantErr) {
		t.Fatalf("expected InvariantError, got %v", err)
	}
}

func TestRemoveMember_NonLeaderDenied(t *testing.T) {
	db := setupTestDB(t)
	leader := createTestUser(t, db, "alice@example.com", "Alice")
	member := createTestUser(t, db, "bob@example.com", "Bob")
	project := createTestProject(t, db, leader, "Board")
	addTestMember(t, db, leader, member, project.ID)

	svc := NewMembershipService(db)
	err := svc.RemoveMember(member, project.ID, member.ID)

	var authErr *AuthorizationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestRemoveMember_UnknownMember(t *testing.T) {
	db := setupTestDB(t)
	leader := createTestUser(t, db, "alice@example.com", "Alice")
	stranger := createTestUser(t, db, "eve@example.com", "Eve")
	project := createTestProject(t, db, leader, "Board")

	svc := NewMembershipService(db)
	err := svc.RemoveMember(leader, project.ID, stranger.ID)

	var notFoundErr *NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestFilterEmpty(t *testing.T) {
	got := filterEmpty([]string{"a", "", "b", "", "a"})
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %v", got)
	}
	if got[0] != "a" || got[1] != "b" || got[2] != "a" {
		t.Errorf("order or duplicates not preserved: %v", got)
	}
}
