package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/teamboardhq/teamboard/backend/internal/services"
	"github.com/teamboardhq/teamboard/backend/pkg/response"
	"gorm.io/gorm"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
}

func NewSystemConfigHandler(db *gorm.DB) *SystemConfigHandler {
	return &SystemConfigHandler{
		configService: services.NewSystemConfigService(db),
	}
}

// GetEmailConfig returns the SMTP settings (admin only)
// GET /api/system/email-config
func (h *SystemConfigHandler) GetEmailConfig(c *gin.Context) {
	response.Success(c, h.configService.GetEmailConfig())
}

// UpdateEmailConfig updates the SMTP settings (admin only)
// PUT /api/system/email-config
func (h *SystemConfigHandler) UpdateEmailConfig(c *gin.Context) {
	var req services.UpdateEmailConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.UpdateEmailConfig(&req); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, h.configService.GetEmailConfig())
}
