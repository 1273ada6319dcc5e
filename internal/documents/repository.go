package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrConflict is returned when a transition's optimistic precondition no
// longer holds, i.e. another transition committed first.
var ErrConflict = errors.New("document was modified concurrently")

// Transition is an atomic workflow step: status change, handler change and
// audit entry commit together or not at all. FromStatus and FromHandler are
// the state the caller observed; the update is rejected if they have changed.
type Transition struct {
	DocumentID  uuid.UUID
	FromStatus  DocumentStatus
	FromHandler *uuid.UUID
	ToStatus    DocumentStatus
	ToHandler   *uuid.UUID
	History     *WorkflowHistory // nil skips the audit entry (review markers only)
}

type Repository interface {
	CreateDocument(ctx context.Context, doc *Document) error
	GetDocumentByID(ctx context.Context, id uuid.UUID) (*Document, error)
	ListDocuments(ctx context.Context, filters ListFilters) ([]Document, error)
	UpdateDocument(ctx context.Context, doc *Document) error
	ListDueSoon(ctx context.Context, cutoff time.Time) ([]Document, error)

	ApplyTransition(ctx context.Context, t *Transition) error
	ListHistory(ctx context.Context, documentID uuid.UUID) ([]WorkflowHistory, error)

	CreateVersion(ctx context.Context, version *DocumentVersion) error
	ListVersions(ctx context.Context, documentID uuid.UUID) ([]DocumentVersion, error)
	GetVersion(ctx context.Context, documentID uuid.UUID, versionNumber int) (*DocumentVersion, error)
	GetVersionByID(ctx context.Context, id uuid.UUID) (*DocumentVersion, error)
}

// ListFilters narrows document listings.
type ListFilters struct {
	DepartmentID *uuid.UUID
	Status       *DocumentStatus
	HandlerID    *uuid.UUID
	CreatedBy    *uuid.UUID
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateDocument(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO documents (
			id, document_number, title, description, priority, due_date,
			file_name, status, current_handler_user_id, created_by_user_id, department_id
		) VALUES (
			:id, :document_number, :title, :description, :priority, :due_date,
			:file_name, :status, :current_handler_user_id, :created_by_user_id, :department_id
		)`
	_, err := r.db.NamedExecContext(ctx, query, doc)
	return err
}

func (r *postgresRepository) GetDocumentByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	var doc Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &doc, err
}

func (r *postgresRepository) ListDocuments(ctx context.Context, filters ListFilters) ([]Document, error) {
	var docs []Document
	query := "SELECT * FROM documents WHERE 1=1"
	var args []interface{}
	argCount := 1

	if filters.DepartmentID != nil {
		query += fmt.Sprintf(" AND department_id = $%d", argCount)
		args = append(args, *filters.DepartmentID)
		argCount++
	}
	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.HandlerID != nil {
		query += fmt.Sprintf(" AND current_handler_user_id = $%d", argCount)
		args = append(args, *filters.HandlerID)
		argCount++
	}
	if filters.CreatedBy != nil {
		query += fmt.Sprintf(" AND created_by_user_id = $%d", argCount)
		args = append(args, *filters.CreatedBy)
		argCount++
	}
	query += " ORDER BY updated_at DESC"

	err := r.db.SelectContext(ctx, &docs, query, args...)
	return docs, err
}

func (r *postgresRepository) UpdateDocument(ctx context.Context, doc *Document) error {
	query := `
		UPDATE documents SET
			title = :title,
			description = :description,
			priority = :priority,
			due_date = :due_date,
			file_name = :file_name,
			updated_at = now()
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, doc)
	return err
}

func (r *postgresRepository) ListDueSoon(ctx context.Context, cutoff time.Time) ([]Document, error) {
	var docs []Document
	err := r.db.SelectContext(ctx, &docs, `
		SELECT * FROM documents
		WHERE status IN ('PENDING', 'IN_REVIEW')
		  AND due_date IS NOT NULL AND due_date <= $1
		ORDER BY due_date`, cutoff)
	return docs, err
}

// ApplyTransition commits a workflow step atomically. The WHERE clause
// carries the observed status and handler; zero rows affected means another
// transition won the race and ErrConflict is returned with nothing written.
func (r *postgresRepository) ApplyTransition(ctx context.Context, t *Transition) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE documents
		SET status = $1, current_handler_user_id = $2, updated_at = now()
		WHERE id = $3
		  AND status = $4
		  AND current_handler_user_id IS NOT DISTINCT FROM $5`,
		t.ToStatus, t.ToHandler, t.DocumentID, t.FromStatus, t.FromHandler)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrConflict
	}

	if t.History != nil {
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO workflow_history (
				id, document_id, action, from_user_id, to_user_id, comments
			) VALUES (
				:id, :document_id, :action, :from_user_id, :to_user_id, :comments
			)`, t.History)
		if err != nil {
			return fmt.Errorf("failed to append workflow history: %w", err)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) ListHistory(ctx context.Context, documentID uuid.UUID) ([]WorkflowHistory, error) {
	var history []WorkflowHistory
	err := r.db.SelectContext(ctx, &history,
		"SELECT * FROM workflow_history WHERE document_id = $1 ORDER BY created_at, id", documentID)
	return history, err
}

// CreateVersion appends an immutable version. The version number is assigned
// inside the transaction so numbers stay contiguous, and the current-version
// flag moves to the new row.
func (r *postgresRepository) CreateVersion(ctx context.Context, version *DocumentVersion) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var maxVersion int
	err = tx.GetContext(ctx, &maxVersion,
		"SELECT COALESCE(MAX(version_number), 0) FROM document_versions WHERE document_id = $1", version.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to read latest version number: %w", err)
	}
	version.VersionNumber = maxVersion + 1
	version.IsCurrentVersion = true

	_, err = tx.ExecContext(ctx,
		"UPDATE document_versions SET is_current_version = false WHERE document_id = $1", version.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to clear current version flag: %w", err)
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO document_versions (
			id, document_id, version_number, file_name, change_description,
			is_current_version, created_by_user_id
		) VALUES (
			:id, :document_id, :version_number, :file_name, :change_description,
			:is_current_version, :created_by_user_id
		)`, version)
	if err != nil {
		return fmt.Errorf("failed to insert version: %w", err)
	}

	return tx.Commit()
}

func (r *postgresRepository) ListVersions(ctx context.Context, documentID uuid.UUID) ([]DocumentVersion, error) {
	var versions []DocumentVersion
	err := r.db.SelectContext(ctx, &versions,
		"SELECT * FROM document_versions WHERE document_id = $1 ORDER BY version_number DESC", documentID)
	return versions, err
}

func (r *postgresRepository) GetVersion(ctx context.Context, documentID uuid.UUID, versionNumber int) (*DocumentVersion, error) {
	var version DocumentVersion
	err := r.db.GetContext(ctx, &version,
		"SELECT * FROM document_versions WHERE document_id = $1 AND version_number = $2", documentID, versionNumber)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &version, err
}

func (r *postgresRepository) GetVersionByID(ctx context.Context, id uuid.UUID) (*DocumentVersion, error) {
	var version DocumentVersion
	err := r.db.GetContext(ctx, &version, "SELECT * FROM document_versions WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &version, err
}
