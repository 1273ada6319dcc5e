package documents

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for document operations
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers document routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	docs := router.Group("/documents")
	{
		docs.POST("", h.createDocument)
		docs.GET("", h.listDocuments)
		docs.GET("/:id", h.getDocument)
		docs.PUT("/:id", h.updateDocument)

		docs.GET("/:id/versions", h.listVersions)
		docs.POST("/:id/versions", h.uploadVersion)
	}
	router.GET("/versions/:versionId/download", h.downloadVersion)
}

func (h *Handler) getUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// createDocument handles POST /api/v1/documents (multipart form)
func (h *Handler) createDocument(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	req := CreateRequest{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		FileName:    header.Filename,
		FileContent: file,
		CreatedBy:   h.getUserID(c),
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	deptID, err := uuid.Parse(c.PostForm("department_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department_id"})
		return
	}
	req.DepartmentID = deptID

	if p := c.PostForm("priority"); p != "" {
		switch p {
		case "1":
			req.Priority = PriorityHigh
		case "2":
			req.Priority = PriorityMedium
		case "3":
			req.Priority = PriorityLow
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "priority must be 1, 2 or 3"})
			return
		}
	}

	if d := c.PostForm("due_date"); d != "" {
		due, err := time.Parse(time.RFC3339, d)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be RFC3339"})
			return
		}
		req.DueDate = &due
	}

	doc, err := h.service.CreateDocument(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("Failed to create document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// listDocuments handles GET /api/v1/documents
func (h *Handler) listDocuments(c *gin.Context) {
	var filters ListFilters

	if dept := c.Query("department_id"); dept != "" {
		id, err := uuid.Parse(dept)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department_id"})
			return
		}
		filters.DepartmentID = &id
	}
	if status := c.Query("status"); status != "" {
		s := DocumentStatus(status)
		filters.Status = &s
	}
	if c.Query("assigned_to_me") == "true" {
		id := h.getUserID(c)
		filters.HandlerID = &id
	}
	if c.Query("created_by_me") == "true" {
		id := h.getUserID(c)
		filters.CreatedBy = &id
	}

	docs, err := h.service.ListDocuments(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, docs)
}

// getDocument handles GET /api/v1/documents/:id
func (h *Handler) getDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	doc, err := h.service.GetDocument(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

type updateDocumentRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *Priority  `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// updateDocument handles PUT /api/v1/documents/:id
func (h *Handler) updateDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.service.UpdateDocument(c.Request.Context(), id, UpdateRequest{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.logger.Error("Failed to update document", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// listVersions handles GET /api/v1/documents/:id/versions
func (h *Handler) listVersions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	versions, err := h.service.ListVersions(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to list versions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, versions)
}

// uploadVersion handles POST /api/v1/documents/:id/versions (multipart form)
func (h *Handler) uploadVersion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	defer file.Close()

	version, err := h.service.UploadNewVersion(c.Request.Context(), id, VersionRequest{
		FileName:          header.Filename,
		FileContent:       file,
		ChangeDescription: c.PostForm("change_description"),
		UploadedBy:        h.getUserID(c),
	})
	if err != nil {
		h.logger.Error("Failed to upload version", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, version)
}

// downloadVersion handles GET /api/v1/versions/:versionId/download
func (h *Handler) downloadVersion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("versionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version id"})
		return
	}

	reader, err := h.service.DownloadVersion(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to download version", zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "version not found"})
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", reader, nil)
}
