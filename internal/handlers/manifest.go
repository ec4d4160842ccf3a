package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jboilerplate/portal/internal/manifest"
	"github.com/jboilerplate/portal/pkg/logger"
	"github.com/jboilerplate/portal/pkg/response"
)

type ManifestHandler struct {
	routes *manifest.Store
}

func NewManifestHandler(routes *manifest.Store) *ManifestHandler {
	return &ManifestHandler{routes: routes}
}

// Routes serves the route manifest uncached; it changes whenever a page is
// created or deleted.
// GET /config/generated-routes.json
func (h *ManifestHandler) Routes(c *gin.Context) {
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	entries, err := h.routes.Read()
	if err != nil {
		logger.Error().Err(err).Msg("[Manifest] failed to read route manifest")
		response.ServerError(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, entries)
}
