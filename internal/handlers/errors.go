package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/huangang/portfolio/internal/services"
	"github.com/huangang/portfolio/internal/site"
	"github.com/huangang/portfolio/internal/store"
	"github.com/huangang/portfolio/pkg/response"
)

// respondError maps service errors onto the API envelope.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCollegeNotFound),
		errors.Is(err, services.ErrAnnouncementNotFound),
		errors.Is(err, services.ErrModuleNotFound):
		response.Error(c, response.NewNotFound(err.Error()).WithCause(err))
	case errors.Is(err, site.ErrCollegeInactive):
		response.Error(c, response.NewNotFound(err.Error()).WithCause(err))
	case errors.Is(err, services.ErrModuleExists):
		response.Error(c, response.NewConflict(err.Error()).WithCause(err))
	case errors.Is(err, services.ErrBuiltInModule):
		response.Error(c, response.NewForbidden(err.Error()).WithCause(err))
	case errors.Is(err, services.ErrInvalidModuleKey),
		errors.Is(err, services.ErrCustomThemeRequired),
		errors.Is(err, services.ErrInvalidBackup):
		response.Error(c, response.NewBadRequest(err.Error()).WithCause(err))
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUserDisabled):
		response.Error(c, response.NewUnauthorized(err.Error()).WithCause(err))
	case errors.Is(err, store.ErrMalformed):
		response.Error(c, response.NewServerError("stored data is corrupted").WithCause(err))
	default:
		response.Error(c, err)
	}
}
