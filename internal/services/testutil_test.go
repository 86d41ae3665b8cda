package services

import (
	"fmt"
	"testing"

	"github.com/teamboardhq/teamboard/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens a named in-memory database so each test gets an
// isolated schema while gorm's pooled connections still see the same
// data.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Invitation{},
		&models.Task{},
		&models.Comment{},
		&models.RefreshToken{},
		&models.SystemLog{},
		&models.SystemConfig{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// createTestUser inserts a user and returns a resolved caller for it.
func createTestUser(t *testing.T, db *gorm.DB, email, name string) *Caller {
	t.Helper()

	user := models.User{
		Email:    email,
		Name:     name,
		Role:     "user",
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}

	caller, err := NewIdentityService(db).Resolve(user.ID)
	if err != nil {
		t.Fatalf("failed to resolve caller for %s: %v", email, err)
	}
	return caller
}

// createTestProject creates a project led by the given caller.
func createTestProject(t *testing.T, db *gorm.DB, leader *Caller, name string) *models.Project {
	t.Helper()

	svc := NewMembershipService(db)
	project, err := svc.CreateProject(leader, &CreateProjectRequest{Name: name})
	if err != nil {
		t.Fatalf("failed to create project %s: %v", name, err)
	}
	return project
}

// addTestMember invites and accepts in one step.
func addTestMember(t *testing.T, db *gorm.DB, leader, member *Caller, projectID uint) {
	t.Helper()

	svc := NewInvitationService(db, nil)
	invitation, err := svc.Invite(leader, projectID, member.Email)
	if err != nil {
		t.Fatalf("failed to invite %s: %v", member.Email, err)
	}
	if _, err := svc.Accept(member, invitation.ID); err != nil {
		t.Fatalf("failed to accept invitation for %s: %v", member.Email, err)
	}
}
