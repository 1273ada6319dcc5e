package documents

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"docuflow/approval-portal/approval-portal-backend/pkg/storage"
)

// StorageProvider stores and retrieves version file content through the
// blob store port.
type StorageProvider struct {
	blobs storage.BlobStore
}

func NewStorageProvider(blobs storage.BlobStore) *StorageProvider {
	return &StorageProvider{blobs: blobs}
}

// GenerateKey builds the blob key for a version's file content.
func (p *StorageProvider) GenerateKey(documentID uuid.UUID, versionNumber int, fileName string) string {
	return fmt.Sprintf("documents/%s/versions/%d/%s", documentID, versionNumber, fileName)
}

func (p *StorageProvider) Store(ctx context.Context, key string, body io.Reader) error {
	return p.blobs.Upload(ctx, key, body)
}

func (p *StorageProvider) Load(ctx context.Context, key string) (io.ReadCloser, error) {
	return p.blobs.Download(ctx, key)
}

// LoadText returns a version's content as plain text. Text extraction from
// office formats happens in the external editor service before upload; the
// portal stores and serves the extracted text as-is.
func (p *StorageProvider) LoadText(ctx context.Context, key string) (string, error) {
	reader, err := p.blobs.Download(ctx, key)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read version content: %w", err)
	}
	return string(content), nil
}
