package documents

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service interface {
	CreateDocument(ctx context.Context, req CreateRequest) (*Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	ListDocuments(ctx context.Context, filters ListFilters) ([]Document, error)
	UpdateDocument(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Document, error)

	UploadNewVersion(ctx context.Context, id uuid.UUID, req VersionRequest) (*DocumentVersion, error)
	ListVersions(ctx context.Context, id uuid.UUID) ([]DocumentVersion, error)
	DownloadVersion(ctx context.Context, versionID uuid.UUID) (io.ReadCloser, error)
	VersionContent(ctx context.Context, versionID uuid.UUID) (string, error)
}

type CreateRequest struct {
	Title        string
	Description  string
	Priority     Priority
	DueDate      *time.Time
	DepartmentID uuid.UUID
	FileName     string
	FileContent  io.Reader
	CreatedBy    uuid.UUID
}

type UpdateRequest struct {
	Title       *string
	Description *string
	Priority    *Priority
	DueDate     *time.Time
}

type VersionRequest struct {
	FileName          string
	FileContent       io.Reader
	ChangeDescription string
	UploadedBy        uuid.UUID
}

type documentService struct {
	repo    Repository
	storage *StorageProvider
}

func NewService(repo Repository, storage *StorageProvider) Service {
	return &documentService{
		repo:    repo,
		storage: storage,
	}
}

// CreateDocument creates a document in DRAFT with the creator as handler,
// and stores the attached file as version 1.
func (s *documentService) CreateDocument(ctx context.Context, req CreateRequest) (*Document, error) {
	docID := uuid.New()
	handler := req.CreatedBy

	priority := req.Priority
	if priority == 0 {
		priority = PriorityMedium
	}

	doc := &Document{
		ID:                   docID,
		DocumentNumber:       generateDocumentNumber(docID),
		Title:                req.Title,
		Description:          req.Description,
		Priority:             priority,
		DueDate:              req.DueDate,
		FileName:             req.FileName,
		Status:               StatusDraft,
		CurrentHandlerUserID: &handler,
		CreatedByUserID:      req.CreatedBy,
		DepartmentID:         req.DepartmentID,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}

	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	if req.FileContent != nil {
		if _, err := s.appendVersion(ctx, doc, VersionRequest{
			FileName:          req.FileName,
			FileContent:       req.FileContent,
			ChangeDescription: "Initial version",
			UploadedBy:        req.CreatedBy,
		}); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

func (s *documentService) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.repo.GetDocumentByID(ctx, id)
}

func (s *documentService) ListDocuments(ctx context.Context, filters ListFilters) ([]Document, error) {
	return s.repo.ListDocuments(ctx, filters)
}

func (s *documentService) UpdateDocument(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Document, error) {
	doc, err := s.repo.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s not found", id)
	}

	if req.Title != nil {
		doc.Title = *req.Title
	}
	if req.Description != nil {
		doc.Description = *req.Description
	}
	if req.Priority != nil {
		doc.Priority = *req.Priority
	}
	if req.DueDate != nil {
		doc.DueDate = req.DueDate
	}

	if err := s.repo.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) UploadNewVersion(ctx context.Context, id uuid.UUID, req VersionRequest) (*DocumentVersion, error) {
	doc, err := s.repo.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s not found", id)
	}

	version, err := s.appendVersion(ctx, doc, req)
	if err != nil {
		return nil, err
	}

	doc.FileName = req.FileName
	if err := s.repo.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}

	return version, nil
}

func (s *documentService) appendVersion(ctx context.Context, doc *Document, req VersionRequest) (*DocumentVersion, error) {
	version := &DocumentVersion{
		ID:                uuid.New(),
		DocumentID:        doc.ID,
		FileName:          req.FileName,
		ChangeDescription: req.ChangeDescription,
		CreatedByUserID:   req.UploadedBy,
		CreatedAt:         time.Now(),
	}

	// The repository assigns the version number; the blob key depends on it,
	// so the row is written first.
	if err := s.repo.CreateVersion(ctx, version); err != nil {
		return nil, err
	}

	key := s.storage.GenerateKey(doc.ID, version.VersionNumber, req.FileName)
	if err := s.storage.Store(ctx, key, req.FileContent); err != nil {
		return nil, fmt.Errorf("failed to store version content: %w", err)
	}

	return version, nil
}

func (s *documentService) ListVersions(ctx context.Context, id uuid.UUID) ([]DocumentVersion, error) {
	return s.repo.ListVersions(ctx, id)
}

func (s *documentService) DownloadVersion(ctx context.Context, versionID uuid.UUID) (io.ReadCloser, error) {
	version, err := s.repo.GetVersionByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, fmt.Errorf("version %s not found", versionID)
	}

	key := s.storage.GenerateKey(version.DocumentID, version.VersionNumber, version.FileName)
	return s.storage.Load(ctx, key)
}

// VersionContent returns the plain-text content of a version for comparison.
func (s *documentService) VersionContent(ctx context.Context, versionID uuid.UUID) (string, error) {
	version, err := s.repo.GetVersionByID(ctx, versionID)
	if err != nil {
		return "", err
	}
	if version == nil {
		return "", fmt.Errorf("version %s not found", versionID)
	}

	key := s.storage.GenerateKey(version.DocumentID, version.VersionNumber, version.FileName)
	return s.storage.LoadText(ctx, key)
}

// generateDocumentNumber derives a human-readable reference code.
func generateDocumentNumber(id uuid.UUID) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return fmt.Sprintf("DOC-%s-%s", time.Now().Format("20060102"), short)
}
