package comparison

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"docuflow/approval-portal/approval-portal-backend/pkg/textdiff"
)

// Handler handles HTTP requests for version comparison
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers comparison routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/documents/:id/compare", h.compare)
}

func (h *Handler) compare(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	from, ok := h.versionParam(c, "from")
	if !ok {
		return
	}
	to, ok := h.versionParam(c, "to")
	if !ok {
		return
	}

	result, err := h.service.Compare(c.Request.Context(), documentID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, ErrDocumentNotFound), errors.Is(err, ErrVersionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, textdiff.ErrContentTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Version comparison failed",
				zap.String("document_id", documentID.String()),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) versionParam(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter: " + name})
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version number: " + raw})
		return 0, false
	}
	return n, true
}
