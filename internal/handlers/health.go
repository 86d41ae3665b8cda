package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/teamboardhq/teamboard/backend/internal/models"
	"github.com/teamboardhq/teamboard/backend/internal/services"
)

// HealthHandler reports the status of the service's subsystems.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	mailQueue := services.GetMailQueue()
	queueMode := "sync"
	if mailQueue != nil && mailQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	var pendingInvitations int64
	models.GetDB().Model(&models.Invitation{}).
		Where("status = ?", models.InvitationPending).
		Count(&pendingInvitations)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "teamboard",
		"components": gin.H{
			"database":            dbStatus,
			"queue_mode":          queueMode,
			"pending_invitations": pendingInvitations,
		},
	})
}
