package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/teamboardhq/teamboard/backend/internal/services"
	"github.com/teamboardhq/teamboard/backend/pkg/response"
)

// writeError maps service errors onto HTTP responses. Every handler
// funnels service failures through here so the status mapping lives in
// one place.
func writeError(c *gin.Context, err error) {
	var (
		validationErr    *services.ValidationError
		authorizationErr *services.AuthorizationError
		invariantErr     *services.InvariantError
		notFoundErr      *services.NotFoundError
		cascadeErr       *services.CascadeError
	)

	switch {
	case errors.Is(err, services.ErrAlreadyInvited):
		response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrStaleInvitation):
		response.Conflict(c, err.Error())
	case errors.As(err, &validationErr):
		response.BadRequest(c, validationErr.Msg)
	case errors.As(err, &authorizationErr):
		response.Forbidden(c, authorizationErr.Msg)
	case errors.As(err, &invariantErr):
		response.Conflict(c, invariantErr.Msg)
	case errors.As(err, &notFoundErr):
		response.NotFound(c, notFoundErr.Error())
	case errors.As(err, &cascadeErr):
		response.ServerError(c, cascadeErr.Error())
	default:
		response.ServerError(c, err.Error())
	}
}
