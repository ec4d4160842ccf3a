package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jboilerplate/portal/internal/services"
	"github.com/jboilerplate/portal/pkg/logger"
	"github.com/jboilerplate/portal/pkg/response"
)

type ImageHandler struct {
	imageService *services.ImageService
}

func NewImageHandler(imageService *services.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

type uploadImageRequest struct {
	Image    string `json:"image" binding:"required"`
	Filename string `json:"filename" binding:"required"`
}

// Upload stores a base64 image for page content.
// POST /api/upload-image
func (h *ImageHandler) Upload(c *gin.Context) {
	var req uploadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	img, err := h.imageService.Save(req.Filename, req.Image)
	switch {
	case err == nil:
		response.OK(c, gin.H{"path": img.Path, "filename": img.Filename})
	case errors.Is(err, services.ErrInvalidImage), errors.Is(err, services.ErrImageTooLarge):
		response.BadRequest(c, err.Error())
	default:
		logger.Error().Err(err).Msg("[Upload] image upload failed")
		response.ServerError(c, err.Error())
	}
}
