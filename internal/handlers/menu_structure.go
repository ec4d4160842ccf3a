package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jboilerplate/portal/internal/metrics"
	"github.com/jboilerplate/portal/internal/models"
	"github.com/jboilerplate/portal/internal/services"
	"github.com/jboilerplate/portal/pkg/logger"
	"github.com/jboilerplate/portal/pkg/response"
)

type MenuStructureHandler struct {
	menuService *services.MenuStructureService
	metrics     *metrics.Metrics
}

func NewMenuStructureHandler(menuService *services.MenuStructureService, m *metrics.Metrics) *MenuStructureHandler {
	return &MenuStructureHandler{menuService: menuService, metrics: m}
}

type saveMenuStructureRequest struct {
	Role      string                `json:"role"`
	Structure []models.MenuCategory `json:"structure"`
}

// Get returns the stored menu of a role; structure is null when none is stored.
// GET /api/menu-structure?role=admin
func (h *MenuStructureHandler) Get(c *gin.Context) {
	role := c.DefaultQuery("role", services.RoleAdmin)

	structure, err := h.menuService.Get(c.Request.Context(), role)
	if err != nil {
		logger.Error().Err(err).Str("role", role).Msg("[MenuStructure] load failed")
		response.ServerError(c, err.Error())
		return
	}
	response.OK(c, gin.H{"structure": structure})
}

// Save replaces a role's menu.
// POST /api/menu-structure
func (h *MenuStructureHandler) Save(c *gin.Context) {
	var req saveMenuStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.menuService.Save(c.Request.Context(), req.Role, req.Structure)
	h.metrics.RecordConfigWrite("menu", err == nil)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, nil)
}
