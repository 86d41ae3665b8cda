package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamboardhq/teamboard/backend/internal/middleware"
	"github.com/teamboardhq/teamboard/backend/internal/services"
	"github.com/teamboardhq/teamboard/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	membership *services.MembershipService
	identity   *services.IdentityService
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		membership: services.NewMembershipService(db),
		identity:   services.NewIdentityService(db),
	}
}

// List returns the projects the caller belongs to
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	projects, err := h.membership.ListProjects(caller)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, projects)
}

// GetByID returns a project by ID
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	project, err := h.membership.GetProject(caller, uint(id))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, project)
}

// Create creates a new project led by the caller
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	project, err := h.membership.CreateProject(caller, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("project", "create", "project created: "+project.Name, &userID, c.ClientIP(), c.Request.UserAgent(), nil)
	response.Created(c, project)
}

// Update applies a partial update to a project
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	project, err := h.membership.UpdateProject(caller, uint(id), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, project)
}

// Delete removes a project and everything under it
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	if err := h.membership.DeleteProject(caller, uint(id)); err != nil {
		writeError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("project", "delete", "project deleted", &userID, c.ClientIP(), c.Request.UserAgent(), nil)
	response.Success(c, gin.H{"message": "project deleted successfully"})
}
