package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jboilerplate/portal/internal/services"
	"github.com/jboilerplate/portal/pkg/logger"
	"github.com/jboilerplate/portal/pkg/response"
)

type SetupHandler struct {
	setupService *services.SetupService
}

func NewSetupHandler(setupService *services.SetupService) *SetupHandler {
	return &SetupHandler{setupService: setupService}
}

// GetStatus reports whether the installation is usable.
// GET /api/setup/status
func (h *SetupHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.setupService.Status(c.Request.Context()))
}

// Complete finishes the setup wizard.
// POST /api/setup/complete
func (h *SetupHandler) Complete(c *gin.Context) {
	var req services.SetupCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.setupService.Complete(c.Request.Context(), &req)
	switch {
	case err == nil:
		response.OK(c, gin.H{"message": "Setup completed successfully!"})
	case errors.Is(err, services.ErrAlreadyInitialized):
		response.Error(c, 0, response.NewConflict(err.Error()))
	default:
		logger.Error().Err(err).Msg("[Setup] setup completion failed")
		response.Error(c, http.StatusBadRequest, err)
	}
}

// TestDB checks a candidate database before the wizard commits to it.
// POST /api/setup/test-db
func (h *SetupHandler) TestDB(c *gin.Context) {
	var target services.DatabaseTarget
	if err := c.ShouldBindJSON(&target); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	probe, err := h.setupService.TestDatabase(c.Request.Context(), &target)
	switch {
	case err == nil:
		response.OK(c, gin.H{"message": "Database connection successful!", "status": probe})
	case errors.Is(err, services.ErrAlreadyInitialized):
		response.Error(c, 0, response.NewConflict(err.Error()))
	default:
		logger.Warn().Err(err).Msg("[Setup] database test failed")
		response.Error(c, http.StatusBadRequest, err)
	}
}
