package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jboilerplate/portal/internal/services"
	"github.com/jboilerplate/portal/pkg/response"
)

type SystemHandler struct {
	statusService *services.SystemStatusService
	logService    *services.SystemLogService
}

func NewSystemHandler(statusService *services.SystemStatusService, logService *services.SystemLogService) *SystemHandler {
	return &SystemHandler{statusService: statusService, logService: logService}
}

// Status reports runtime state: database, config source and loaded routes.
// GET /api/system/status
func (h *SystemHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.statusService.Status(c.Request.Context()))
}

// Logs lists the audit trail.
// GET /api/system/logs
func (h *SystemHandler) Logs(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.logService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.OK(c, gin.H{"logs": resp.Items, "total": resp.Total, "page": resp.Page, "page_size": resp.PageSize})
}
