package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/teamboardhq/teamboard/backend/internal/services"
	"github.com/teamboardhq/teamboard/backend/pkg/response"
	"gorm.io/gorm"
)

type CommentHandler struct {
	comments *services.CommentService
	identity *services.IdentityService
}

func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{
		comments: services.NewCommentService(db, services.NewMembershipService(db)),
		identity: services.NewIdentityService(db),
	}
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

// Add posts a comment on a task
// POST /api/tasks/:id/comments
func (h *CommentHandler) Add(c *gin.Context) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	comment, err := h.comments.Add(caller, uint(taskID), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, comment)
}

// ListByTask returns a task's comments in chronological order
// GET /api/tasks/:id/comments
func (h *CommentHandler) ListByTask(c *gin.Context) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid task id")
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	comments, err := h.comments.ListByTask(caller, uint(taskID))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, comments)
}

// Update edits a comment's content
// PUT /api/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	comment, err := h.comments.Edit(caller, uint(id), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, comment)
}

// Delete removes a comment
// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}

	caller, ok := resolveCaller(c, h.identity)
	if !ok {
		return
	}

	if err := h.comments.Delete(caller, uint(id)); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "comment deleted successfully"})
}
