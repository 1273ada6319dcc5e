package notifications

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"docuflow/approval-portal/approval-portal-backend/internal/notifications/websocket"
)

// Handler handles HTTP requests for notifications
type Handler struct {
	service   *Service
	wsManager *websocket.Manager
	logger    *zap.Logger
}

func NewHandler(service *Service, wsManager *websocket.Manager, logger *zap.Logger) *Handler {
	return &Handler{service: service, wsManager: wsManager, logger: logger}
}

// RegisterRoutes registers notification routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	notif := router.Group("/notifications")
	{
		notif.GET("", h.list)
		notif.GET("/unread-count", h.unreadCount)
		notif.POST("/:id/read", h.markRead)
		notif.GET("/ws", h.connect)
	}
}

func getUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	rows, err := h.service.List(c.Request.Context(), getUserID(c), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list notifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": rows})
}

func (h *Handler) unreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(c.Request.Context(), getUserID(c))
	if err != nil {
		h.logger.Error("Failed to count notifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *Handler) markRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), getUserID(c), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to mark notification read", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) connect(c *gin.Context) {
	userID := getUserID(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := h.wsManager.HandleConnection(c.Writer, c.Request, userID); err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
	}
}
