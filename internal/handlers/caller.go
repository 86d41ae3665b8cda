package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/teamboardhq/teamboard/backend/internal/middleware"
	"github.com/teamboardhq/teamboard/backend/internal/services"
)

// resolveCaller loads the authenticated user's identity for a request.
// On failure it writes the error response and returns false.
func resolveCaller(c *gin.Context, identity *services.IdentityService) (*services.Caller, bool) {
	caller, err := identity.Resolve(middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return caller, true
}
