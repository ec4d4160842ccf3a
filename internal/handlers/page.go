package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jboilerplate/portal/internal/services"
	"github.com/jboilerplate/portal/pkg/response"
)

type PageHandler struct {
	pageService *services.PageService
}

func NewPageHandler(pageService *services.PageService) *PageHandler {
	return &PageHandler{pageService: pageService}
}

// GET /api/pages
func (h *PageHandler) List(c *gin.Context) {
	pages, err := h.pageService.List(c.Request.Context())
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.OK(c, gin.H{"pages": pages})
}

// POST /api/pages
func (h *PageHandler) Create(c *gin.Context) {
	var req services.CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	page, err := h.pageService.Create(c.Request.Context(), &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, gin.H{"page": page})
}

// DELETE /api/pages/:id
func (h *PageHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid page id")
		return
	}

	result, err := h.pageService.Delete(c.Request.Context(), uint(id))
	if errors.Is(err, services.ErrPageNotFound) {
		response.NotFound(c, err.Error())
		return
	}
	if err != nil {
		response.Error(c, http.StatusBadRequest, err)
		return
	}
	response.OK(c, gin.H{"result": result})
}

// DeleteManual removes a page that has no row, only a route and a file.
// POST /api/pages/delete-manual
func (h *PageHandler) DeleteManual(c *gin.Context) {
	var req services.DeleteManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.pageService.DeleteManual(c.Request.Context(), &req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, gin.H{
		"message":       "Manual page deleted successfully",
		"deletedFiles":  result.DeletedFiles,
		"modifiedMenus": result.ModifiedMenus,
	})
}
