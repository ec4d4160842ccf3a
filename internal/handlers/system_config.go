package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jboilerplate/portal/internal/metrics"
	"github.com/jboilerplate/portal/internal/services"
	"github.com/jboilerplate/portal/pkg/logger"
	"github.com/jboilerplate/portal/pkg/response"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
	metrics       *metrics.Metrics
}

func NewSystemConfigHandler(configService *services.SystemConfigService, m *metrics.Metrics) *SystemConfigHandler {
	return &SystemConfigHandler{configService: configService, metrics: m}
}

// LoadDB returns the stored configuration rows as one object.
// GET /api/system-config/load-db
func (h *SystemConfigHandler) LoadDB(c *gin.Context) {
	values, err := h.configService.LoadDB(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("[SystemConfig] load from database failed")
		response.ServerError(c, err.Error())
		return
	}
	response.OK(c, gin.H{"config": values})
}

// SaveDB upserts every key of the posted object.
// POST /api/system-config/save-db
func (h *SystemConfigHandler) SaveDB(c *gin.Context) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	keys, err := h.configService.SaveDB(c.Request.Context(), values)
	h.metrics.RecordConfigWrite("db", err == nil)
	if err != nil {
		logger.Error().Err(err).Msg("[SystemConfig] save to database failed")
		response.ServerError(c, err.Error())
		return
	}
	response.OK(c, gin.H{"message": "Configuration saved to database successfully", "keys": keys})
}

// LoadFile returns the JSON fallback file.
// GET /api/system-config/load-file
func (h *SystemConfigHandler) LoadFile(c *gin.Context) {
	values, err := h.configService.LoadFile()
	if errors.Is(err, services.ErrConfigFileNotFound) {
		response.NotFound(c, err.Error())
		return
	}
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.OK(c, gin.H{"config": values})
}

// SaveFile writes the JSON fallback file.
// POST /api/system-config/save-file
func (h *SystemConfigHandler) SaveFile(c *gin.Context) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.configService.SaveFile(values)
	h.metrics.RecordConfigWrite("file", err == nil)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.OK(c, gin.H{"message": "Configuration saved successfully"})
}
