package comparison

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"docuflow/approval-portal/approval-portal-backend/internal/documents"
	"docuflow/approval-portal/approval-portal-backend/pkg/textdiff"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrVersionNotFound  = errors.New("document version not found")
)

// Store is the version metadata surface the comparison service needs. The
// documents repository satisfies it.
type Store interface {
	GetDocumentByID(ctx context.Context, id uuid.UUID) (*documents.Document, error)
	GetVersion(ctx context.Context, documentID uuid.UUID, versionNumber int) (*documents.DocumentVersion, error)
}

// ContentLoader yields the plain-text content of a stored version. The
// documents service satisfies it.
type ContentLoader interface {
	VersionContent(ctx context.Context, versionID uuid.UUID) (string, error)
}

type Service interface {
	Compare(ctx context.Context, documentID uuid.UUID, fromVersion, toVersion int) (*Comparison, error)
}

type comparisonService struct {
	store   Store
	content ContentLoader
	engine  *textdiff.Engine
}

func NewService(store Store, content ContentLoader, engine *textdiff.Engine) Service {
	return &comparisonService{
		store:   store,
		content: content,
		engine:  engine,
	}
}

// Compare diffs two versions of a document word by word. Comparing a version
// with itself is valid and yields a single unchanged run.
func (s *comparisonService) Compare(ctx context.Context, documentID uuid.UUID, fromVersion, toVersion int) (*Comparison, error) {
	doc, err := s.store.GetDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s: %w", documentID, ErrDocumentNotFound)
	}

	from, err := s.loadVersion(ctx, documentID, fromVersion)
	if err != nil {
		return nil, err
	}
	to, err := s.loadVersion(ctx, documentID, toVersion)
	if err != nil {
		return nil, err
	}

	fromText, err := s.content.VersionContent(ctx, from.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load version %d content: %w", from.VersionNumber, err)
	}
	toText, err := s.content.VersionContent(ctx, to.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load version %d content: %w", to.VersionNumber, err)
	}

	result, err := s.engine.Compare(fromText, toText)
	if err != nil {
		return nil, err
	}

	return &Comparison{
		DocumentID: documentID,
		From:       versionRef(from),
		To:         versionRef(to),
		Diff:       result.Diff,
		Stats:      result.Stats,
		SideBySide: result.Split(),
	}, nil
}

func (s *comparisonService) loadVersion(ctx context.Context, documentID uuid.UUID, number int) (*documents.DocumentVersion, error) {
	version, err := s.store.GetVersion(ctx, documentID, number)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, fmt.Errorf("version %d of document %s: %w", number, documentID, ErrVersionNotFound)
	}
	return version, nil
}

func versionRef(v *documents.DocumentVersion) VersionRef {
	return VersionRef{
		VersionID:     v.ID,
		VersionNumber: v.VersionNumber,
		FileName:      v.FileName,
		CreatedAt:     v.CreatedAt,
	}
}
