package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the dashboard
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers dashboard routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", h.summary)
}

func (h *Handler) summary(c *gin.Context) {
	userID := uuid.Nil
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uuid.UUID); ok {
			userID = id
		}
	}

	var departmentID *uuid.UUID
	if raw := c.Query("department_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
			return
		}
		departmentID = &id
	}

	summary, err := h.service.Summary(c.Request.Context(), userID, departmentID)
	if err != nil {
		h.logger.Error("Failed to build dashboard summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}
