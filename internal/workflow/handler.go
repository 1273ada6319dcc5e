package workflow

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for workflow transitions
type Handler struct {
	engine *Engine
	logger *zap.Logger
}

func NewHandler(engine *Engine, logger *zap.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// RegisterRoutes registers workflow routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	docs := router.Group("/documents/:id")
	{
		docs.POST("/submit", h.submit)
		docs.POST("/approve", h.approve)
		docs.POST("/reject", h.reject)
		docs.POST("/request-revision", h.requestRevision)
		docs.POST("/start-review", h.startReview)
		docs.GET("/history", h.history)
		docs.GET("/actions", h.allowedActions)
	}
}

func (h *Handler) getUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func (h *Handler) docID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps the workflow error taxonomy to HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidTarget):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Workflow operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type submitRequest struct {
	TargetUserID uuid.UUID `json:"target_user_id" binding:"required"`
	Comments     string    `json:"comments"`
}

func (h *Handler) submit(c *gin.Context) {
	id, ok := h.docID(c)
	if !ok {
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.engine.Submit(c.Request.Context(), id, h.getUserID(c), req.TargetUserID, req.Comments)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

type approveRequest struct {
	Comments        string `json:"comments"`
	SendToNextLevel bool   `json:"send_to_next_level"`
}

func (h *Handler) approve(c *gin.Context) {
	id, ok := h.docID(c)
	if !ok {
		return
	}

	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.engine.Approve(c.Request.Context(), id, h.getUserID(c), req.Comments, req.SendToNextLevel)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

type commentsRequest struct {
	Comments string `json:"comments"`
}

func (h *Handler) reject(c *gin.Context) {
	id, ok := h.docID(c)
	if !ok {
		return
	}

	var req commentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.engine.Reject(c.Request.Context(), id, h.getUserID(c), req.Comments)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

type revisionRequest struct {
	TargetUserID uuid.UUID `json:"target_user_id" binding:"required"`
	Comments     string    `json:"comments"`
}

func (h *Handler) requestRevision(c *gin.Context) {
	id, ok := h.docID(c)
	if !ok {
		return
	}

	var req revisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.engine.RequestRevision(c.Request.Context(), id, h.getUserID(c), req.TargetUserID, req.Comments)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *Handler) startReview(c *gin.Context) {
	id, ok := h.docID(c)
	if !ok {
		return
	}

	doc, err := h.engine.StartReview(c.Request.Context(), id, h.getUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *Handler) history(c *gin.Context) {
	id, ok := h.docID(c)
	if !ok {
		return
	}

	history, err := h.engine.History(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

func (h *Handler) allowedActions(c *gin.Context) {
	id, ok := h.docID(c)
	if !ok {
		return
	}

	actions, err := h.engine.AllowedActions(c.Request.Context(), id, h.getUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"actions": actions})
}
