package services

import (
	"errors"
	"strings"

	"github.com/teamboardhq/teamboard/backend/internal/models"
	"gorm.io/gorm"
)

// CommentService owns comment threads and their authorship rules:
// only the author edits, the author or the project leader deletes.
type CommentService struct {
	db         *gorm.DB
	membership *MembershipService
}

func NewCommentService(db *gorm.DB, membership *MembershipService) *CommentService {
	return &CommentService{db: db, membership: membership}
}

// Add creates a comment on a task. The caller must be a member of the
// task's project.
func (s *CommentService) Add(caller *Caller, taskID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, NewValidationError("comment content must not be empty")
	}

	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("task")
		}
		return nil, err
	}
	if err := s.membership.RequireMember(caller.ID, task.ProjectID); err != nil {
		return nil, err
	}

	comment := models.Comment{
		TaskID:        taskID,
		UserID:        caller.ID,
		CommentorName: caller.Name,
		Content:       content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByTask returns a task's comments, oldest first.
func (s *CommentService) ListByTask(caller *Caller, taskID uint) ([]models.Comment, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("task")
		}
		return nil, err
	}
	if err := s.membership.RequireMember(caller.ID, task.ProjectID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := s.db.Where("task_id = ?", taskID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Edit replaces a comment's content. Author only; the leader has no
// edit override.
func (s *CommentService) Edit(caller *Caller, commentID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, NewValidationError("comment content must not be empty")
	}

	comment, err := s.findComment(commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != caller.ID {
		return nil, NewAuthorizationError("only the author may edit a comment")
	}

	if err := s.db.Model(comment).Update("content", content).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment. Permitted for the author, or for the
// project leader as moderation.
func (s *CommentService) Delete(caller *Caller, commentID uint) error {
	comment, err := s.findComment(commentID)
	if err != nil {
		return err
	}

	if comment.UserID != caller.ID {
		var task models.Task
		if err := s.db.First(&task, comment.TaskID).Error; err != nil {
			return err
		}
		var project models.Project
		if err := s.db.First(&project, task.ProjectID).Error; err != nil {
			return err
		}
		if project.LeaderUserID != caller.ID {
			return NewAuthorizationError("only the author or the project leader may delete a comment")
		}
	}

	return s.db.Delete(&models.Comment{}, comment.ID).Error
}

func (s *CommentService) findComment(commentID uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("comment")
		}
		return nil, err
	}
	return &comment, nil
}
