package documents

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	StatusDraft             DocumentStatus = "DRAFT"
	StatusPending           DocumentStatus = "PENDING"
	StatusInReview          DocumentStatus = "IN_REVIEW"
	StatusRevisionRequested DocumentStatus = "REVISION_REQUESTED"
	StatusApproved          DocumentStatus = "APPROVED"
	StatusRejected          DocumentStatus = "REJECTED"
	StatusCompleted         DocumentStatus = "COMPLETED"
)

// Priority is ordinal: 1 is the most urgent.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

type WorkflowAction string

const (
	ActionSubmit          WorkflowAction = "SUBMIT"
	ActionApprove         WorkflowAction = "APPROVE"
	ActionReject          WorkflowAction = "REJECT"
	ActionRevisionRequest WorkflowAction = "REVISION_REQUEST"
	ActionCompleted       WorkflowAction = "COMPLETED"
)

// Document is a unit of work routed through the approval workflow.
// CurrentHandlerUserID is the single user authorized to act on it.
type Document struct {
	ID                   uuid.UUID      `json:"id" db:"id"`
	DocumentNumber       string         `json:"document_number" db:"document_number"`
	Title                string         `json:"title" db:"title"`
	Description          string         `json:"description" db:"description"`
	Priority             Priority       `json:"priority" db:"priority"`
	DueDate              *time.Time     `json:"due_date,omitempty" db:"due_date"`
	FileName             string         `json:"file_name" db:"file_name"`
	Status               DocumentStatus `json:"status" db:"status"`
	CurrentHandlerUserID *uuid.UUID     `json:"current_handler_user_id,omitempty" db:"current_handler_user_id"`
	CreatedByUserID      uuid.UUID      `json:"created_by_user_id" db:"created_by_user_id"`
	DepartmentID         uuid.UUID      `json:"department_id" db:"department_id"`
	CreatedAt            time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at" db:"updated_at"`
}

// DocumentVersion is an immutable snapshot of an attached file. Version
// numbers per document are contiguous starting at 1; exactly one version per
// document carries IsCurrentVersion.
type DocumentVersion struct {
	ID                uuid.UUID `json:"id" db:"id"`
	DocumentID        uuid.UUID `json:"document_id" db:"document_id"`
	VersionNumber     int       `json:"version_number" db:"version_number"`
	FileName          string    `json:"file_name" db:"file_name"`
	ChangeDescription string    `json:"change_description" db:"change_description"`
	IsCurrentVersion  bool      `json:"is_current_version" db:"is_current_version"`
	CreatedByUserID   uuid.UUID `json:"created_by_user_id" db:"created_by_user_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// WorkflowHistory is an append-only audit trail entry. The latest entry's
// ToUserID mirrors the document's current handler; terminal actions carry a
// null ToUserID.
type WorkflowHistory struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	DocumentID uuid.UUID      `json:"document_id" db:"document_id"`
	Action     WorkflowAction `json:"action" db:"action"`
	FromUserID uuid.UUID      `json:"from_user_id" db:"from_user_id"`
	ToUserID   *uuid.UUID     `json:"to_user_id,omitempty" db:"to_user_id"`
	Comments   string         `json:"comments" db:"comments"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}
