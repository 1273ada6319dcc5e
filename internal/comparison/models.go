package comparison

import (
	"time"

	"github.com/google/uuid"

	"docuflow/approval-portal/approval-portal-backend/pkg/textdiff"
)

// VersionRef identifies one side of a comparison.
type VersionRef struct {
	VersionID     uuid.UUID `json:"version_id"`
	VersionNumber int       `json:"version_number"`
	FileName      string    `json:"file_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// Comparison is the full result of diffing two versions of a document. Diff
// is the inline projection; SideBySide carries the split view.
type Comparison struct {
	DocumentID uuid.UUID           `json:"document_id"`
	From       VersionRef          `json:"from"`
	To         VersionRef          `json:"to"`
	Diff       []textdiff.Segment  `json:"diff"`
	Stats      textdiff.Stats      `json:"stats"`
	SideBySide textdiff.SideBySide `json:"side_by_side"`
}
