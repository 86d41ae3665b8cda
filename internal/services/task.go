package services

import (
	"errors"
	"strings"

	"github.com/teamboardhq/teamboard/backend/internal/models"
	"gorm.io/gorm"
)

// TaskService owns the task board: membership-gated creation,
// creator-or-leader mutation, and the assignee-must-be-member rule
// re-validated on every write.
type TaskService struct {
	db         *gorm.DB
	membership *MembershipService
}

func NewTaskService(db *gorm.DB, membership *MembershipService) *TaskService {
	return &TaskService{db: db, membership: membership}
}

type CreateTaskRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	AssignedTo  *uint    `json:"assigned_to"`
	Labels      []string `json:"labels"`
}

// UpdateTaskRequest is an explicit patch: nil fields are left untouched.
// Unassign clears the assignee; it wins over AssignedTo.
type UpdateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	AssignedTo  *uint     `json:"assigned_to"`
	Unassign    bool      `json:"unassign"`
	Labels      *[]string `json:"labels"`
}

// Create adds a task to the project board. The caller must be a member;
// the assignee, if any, must be a current member of the same project.
func (s *TaskService) Create(caller *Caller, projectID uint, req *CreateTaskRequest) (*models.Task, error) {
	if err := s.membership.RequireMember(caller.ID, projectID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, NewValidationError("task title must not be empty")
	}

	status := req.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !models.ValidTaskStatus(status) {
		return nil, NewValidationError("invalid task status %q", status)
	}

	if req.AssignedTo != nil {
		if err := s.requireAssignee(projectID, *req.AssignedTo); err != nil {
			return nil, err
		}
	}

	task := models.Task{
		ProjectID:   projectID,
		Title:       title,
		Description: req.Description,
		Status:      status,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   caller.ID,
		Labels:      filterEmpty(req.Labels),
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Get returns a task visible to project members.
func (s *TaskService) Get(caller *Caller, taskID uint) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}
	if err := s.membership.RequireMember(caller.ID, task.ProjectID); err != nil {
		return nil, err
	}
	return task, nil
}

// ListByProject returns the project's tasks, optionally filtered to one
// board column.
func (s *TaskService) ListByProject(caller *Caller, projectID uint, status string) ([]models.Task, error) {
	if err := s.membership.RequireMember(caller.ID, projectID); err != nil {
		return nil, err
	}
	if status != "" && !models.ValidTaskStatus(status) {
		return nil, NewValidationError("invalid task status %q", status)
	}

	query := s.db.Where("project_id = ?", projectID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tasks []models.Task
	if err := query.Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListAssignedToCaller returns the caller's assigned tasks across all
// projects, newest first. Without a status filter, done tasks are left
// out; pass status to see a single column instead.
func (s *TaskService) ListAssignedToCaller(caller *Caller, status string) ([]models.Task, error) {
	if status != "" && !models.ValidTaskStatus(status) {
		return nil, NewValidationError("invalid task status %q", status)
	}

	query := s.db.Where("assigned_to = ?", caller.ID)
	if status != "" {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status <> ?", models.TaskStatusDone)
	}

	var tasks []models.Task
	if err := query.Preload("Project").Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update applies a patch to a task. Only the creator or the project
// leader may mutate. Statuses are unordered labels: any column may be
// set directly to any other, only the target is validated. Assignee
// membership is re-checked on every update since a previously valid
// assignee may have been removed.
func (s *TaskService) Update(caller *Caller, taskID uint, req *UpdateTaskRequest) (*models.Task, error) {
	task, project, err := s.findTaskWithProject(taskID)
	if err != nil {
		return nil, err
	}
	if task.CreatedBy != caller.ID && project.LeaderUserID != caller.ID {
		return nil, NewAuthorizationError("only the task creator or the project leader may update this task")
	}

	updates := make(map[string]interface{})

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, NewValidationError("task title must not be empty")
		}
		updates["title"] = title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		if !models.ValidTaskStatus(*req.Status) {
			return nil, NewValidationError("invalid task status %q", *req.Status)
		}
		updates["status"] = *req.Status
	}
	if req.Unassign {
		updates["assigned_to"] = nil
	} else if req.AssignedTo != nil {
		if err := s.requireAssignee(task.ProjectID, *req.AssignedTo); err != nil {
			return nil, err
		}
		updates["assigned_to"] = *req.AssignedTo
	}
	if req.Labels != nil {
		updates["labels"] = filterEmpty(*req.Labels)
	}

	if len(updates) == 0 {
		return task, nil
	}

	if err := s.db.Model(task).Updates(updates).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task and its comments in one transaction. A task is
// never deleted while comments referencing it remain.
func (s *TaskService) Delete(caller *Caller, taskID uint) error {
	task, project, err := s.findTaskWithProject(taskID)
	if err != nil {
		return err
	}
	if task.CreatedBy != caller.ID && project.LeaderUserID != caller.ID {
		return NewAuthorizationError("only the task creator or the project leader may delete this task")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, task.ID).Error
	})
	if err != nil {
		return &CascadeError{Op: "task deletion", Err: err}
	}
	return nil
}

// requireAssignee fails with an InvariantError unless userID is a
// current member of the project. Not a foreign key: enforced at write
// time because members come and go independently of tasks.
func (s *TaskService) requireAssignee(projectID, userID uint) error {
	var count int64
	if err := s.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return NewInvariantError("assignee is not a member of this project")
	}
	return nil
}

func (s *TaskService) findTask(taskID uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("task")
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) findTaskWithProject(taskID uint) (*models.Task, *models.Project, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, nil, err
	}
	var project models.Project
	if err := s.db.First(&project, task.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, NewNotFoundError("project")
		}
		return nil, nil, err
	}
	return task, &project, nil
}
