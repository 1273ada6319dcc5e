package users

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the user directory
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers directory routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/users/:id", h.getUser)
	router.GET("/users/me/approvers", h.listApprovers)
	router.GET("/users/me/revision-targets", h.listRevisionTargets)
	router.GET("/departments", h.listDepartments)
}

func (h *Handler) getUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// getUserID reads the acting user from the context (set by auth middleware).
func (h *Handler) getUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// listApprovers returns the users the caller may submit documents to.
func (h *Handler) listApprovers(c *gin.Context) {
	actorID := h.getUserID(c)

	list, err := h.service.HigherLevelUsers(c.Request.Context(), actorID)
	if err != nil {
		h.logger.Error("Failed to list approvers", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, list)
}

// listRevisionTargets returns the users the caller may send revision requests to.
func (h *Handler) listRevisionTargets(c *gin.Context) {
	actorID := h.getUserID(c)

	list, err := h.service.LowerOrEqualUsers(c.Request.Context(), actorID)
	if err != nil {
		h.logger.Error("Failed to list revision targets", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *Handler) listDepartments(c *gin.Context) {
	list, err := h.service.ListDepartments(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list departments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, list)
}
