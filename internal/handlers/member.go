package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamboardhq/teamboard/backend/internal/middleware"
	"github.com/teamboardhq/teamboard/backend/internal/services"
	"github.com/teamboardhq/teamboard/backend/pkg/response"
	"gorm.io/gorm"
)

type MemberHandler struct {
	membership *services.MembershipService
	identity   *services.IdentityService
}

func NewMemberHandler(db *gorm.DB) *MemberHandler {
	return &MemberHandler{
		membership: services.NewMembershipService(db),
		identity:   services.NewIdentityService(db),
	}
}

// List returns the members of a project
// GET /api/projects/:id/members
func (h *MemberHandler) List(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	if err := h.membership.RequireMember(middleware.GetUserID(c), uint(projectID)); err != nil {
		writeError(c, err)
		return
	}

	members, err := h.membership.ListMembers(uint(projectID))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, members)
}

// Remove removes a member from a project, cascading over their
// comments, invitations and task assignments
// DELETE /api/projects/:id/members/:userId
func (h *MemberHandler) Remove(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	memberUserID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	if err := h.membership.RemoveMember(caller, uint(projectID), uint(memberUserID)); err != nil {
		writeError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("member", "remove", "member removed from project", &userID, c.ClientIP(), c.Request.UserAgent(), nil)
	response.Success(c, gin.H{"message": "member removed successfully"})
}
