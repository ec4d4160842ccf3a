package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// CheckHealth reports database reachability.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		dbStatus = "error: " + err.Error()
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "unhealthy",
			"service":    "jboilerplate-portal",
			"components": gin.H{"database": dbStatus},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"service":    "jboilerplate-portal",
		"components": gin.H{"database": dbStatus},
	})
}
