package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamboardhq/teamboard/backend/internal/middleware"
	"github.com/teamboardhq/teamboard/backend/internal/services"
	"github.com/teamboardhq/teamboard/backend/pkg/response"
	"gorm.io/gorm"
)

type InvitationHandler struct {
	invitations *services.InvitationService
	identity    *services.IdentityService
}

func NewInvitationHandler(db *gorm.DB) *InvitationHandler {
	notifier := services.NewNotificationService(db, services.GetMailQueue())
	return &InvitationHandler{
		invitations: services.NewInvitationService(db, notifier),
		identity:    services.NewIdentityService(db),
	}
}

type inviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Invite invites a registered user to a project by email
// POST /api/projects/:id/invitations
func (h *InvitationHandler) Invite(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	invitation, err := h.invitations.Invite(caller, uint(projectID), req.Email)
	if err != nil {
		writeError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("invitation", "invite", "invitation sent to "+invitation.Email, &userID, c.ClientIP(), c.Request.UserAgent(), nil)
	response.Created(c, invitation)
}

// ListForProject returns all invitations of a project
// GET /api/projects/:id/invitations
func (h *InvitationHandler) ListForProject(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	invitations, err := h.invitations.ListForProject(caller, uint(projectID))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, invitations)
}

// ListMine returns the caller's pending invitations
// GET /api/invitations
func (h *InvitationHandler) ListMine(c *gin.Context) {
	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	invitations, err := h.invitations.ListForCaller(caller)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, invitations)
}

// GetByID returns a single invitation addressed to the caller
// GET /api/invitations/:id
func (h *InvitationHandler) GetByID(c *gin.Context) {
	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	invitation, err := h.invitations.Get(caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, invitation)
}

// Accept accepts an invitation and joins the project
// POST /api/invitations/:id/accept
func (h *InvitationHandler) Accept(c *gin.Context) {
	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	member, err := h.invitations.Accept(caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	services.LogInfo("invitation", "accept", "invitation accepted", &userID, c.ClientIP(), c.Request.UserAgent(), nil)
	response.Success(c, member)
}

// Reject declines an invitation
// POST /api/invitations/:id/reject
func (h *InvitationHandler) Reject(c *gin.Context) {
	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	if err := h.invitations.Reject(caller, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "invitation rejected"})
}
