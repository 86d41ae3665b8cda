package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamboardhq/teamboard/backend/internal/services"
	"github.com/teamboardhq/teamboard/backend/pkg/response"
	"gorm.io/gorm"
)

type TaskHandler struct {
	tasks    *services.TaskService
	identity *services.IdentityService
}

func NewTaskHandler(db *gorm.DB) *TaskHandler {
	return &TaskHandler{
		tasks:    services.NewTaskService(db, services.NewMembershipService(db)),
		identity: services.NewIdentityService(db),
	}
}

// Create adds a task to a project board
// POST /api/projects/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	task, err := h.tasks.Create(caller, uint(projectID), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, task)
}

// ListByProject returns a project's tasks, optionally filtered by status
// GET /api/projects/:id/tasks?status=
func (h *TaskHandler) ListByProject(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListByProject(caller, uint(projectID), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, tasks)
}

// ListMine returns the caller's assigned tasks across all projects
// GET /api/tasks?status=
func (h *TaskHandler) ListMine(c *gin.Context) {
	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListAssignedToCaller(caller, c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, tasks)
}

// GetByID returns a task by ID
// GET /api/tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	task, err := h.tasks.Get(caller, uint(id))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, task)
}

// Update applies a partial update to a task
// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	var req services.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	task, err := h.tasks.Update(caller, uint(id), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, task)
}

// Delete removes a task and its comments
// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	if err := h.tasks.Delete(caller, uint(id)); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "task deleted successfully"})
}
