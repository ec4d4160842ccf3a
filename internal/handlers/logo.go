package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/jboilerplate/portal/internal/services"
	"github.com/jboilerplate/portal/pkg/logger"
	"github.com/jboilerplate/portal/pkg/response"
)

type LogoHandler struct {
	logoService *services.LogoService
}

func NewLogoHandler(logoService *services.LogoService) *LogoHandler {
	return &LogoHandler{logoService: logoService}
}

// GET /api/logo-info?type=light|dark
func (h *LogoHandler) Info(c *gin.Context) {
	info, err := h.logoService.Info(c.Query("type"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, gin.H{"logo": info})
}

// Upload replaces the light or dark logo.
// POST /api/upload (multipart: file, type)
func (h *LogoHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxLogoSize+64<<10)
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.BadRequest(c, services.ErrLogoTooLarge.Error())
			return
		}
		if errors.Is(err, http.ErrMissingFile) {
			response.BadRequest(c, "No file uploaded")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	if file.Size > services.MaxLogoSize {
		response.BadRequest(c, services.ErrLogoTooLarge.Error())
		return
	}

	src, err := file.Open()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	defer src.Close()

	info, err := h.logoService.Upload(c.PostForm("type"), file.Filename, file.Header.Get("Content-Type"), src)
	switch {
	case err == nil:
		response.OK(c, gin.H{"path": info.Path, "filename": filepath.Base(info.Path), "type": info.Type})
	case errors.Is(err, services.ErrInvalidLogoType), errors.Is(err, services.ErrInvalidLogoFormat), errors.Is(err, services.ErrLogoTooLarge):
		response.BadRequest(c, err.Error())
	default:
		logger.Error().Err(err).Msg("[Logo] upload failed")
		response.ServerError(c, err.Error())
	}
}
