package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// StatusCount is one row of the per-status breakdown.
type StatusCount struct {
	Status string `json:"status" db:"status"`
	Count  int    `json:"count" db:"count"`
}

// ActivityEntry is a workflow history row joined with its document.
type ActivityEntry struct {
	DocumentID     uuid.UUID  `json:"document_id" db:"document_id"`
	DocumentNumber string     `json:"document_number" db:"document_number"`
	Title          string     `json:"title" db:"title"`
	Action         string     `json:"action" db:"action"`
	FromUserID     uuid.UUID  `json:"from_user_id" db:"from_user_id"`
	ToUserID       *uuid.UUID `json:"to_user_id,omitempty" db:"to_user_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// Repository aggregates document and workflow data for the dashboard.
type Repository interface {
	CountByStatus(ctx context.Context, departmentID *uuid.UUID) ([]StatusCount, error)
	CountAssigned(ctx context.Context, userID uuid.UUID) (int, error)
	CountDueWithin(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int, error)
	RecentActivity(ctx context.Context, userID uuid.UUID, limit int) ([]ActivityEntry, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CountByStatus(ctx context.Context, departmentID *uuid.UUID) ([]StatusCount, error) {
	counts := []StatusCount{}

	if departmentID != nil {
		err := r.db.SelectContext(ctx, &counts, `
			SELECT status, COUNT(*) AS count
			FROM documents
			WHERE department_id = $1
			GROUP BY status
			ORDER BY status`, *departmentID)
		return counts, err
	}

	err := r.db.SelectContext(ctx, &counts, `
		SELECT status, COUNT(*) AS count
		FROM documents
		GROUP BY status
		ORDER BY status`)
	return counts, err
}

func (r *postgresRepository) CountAssigned(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM documents
		WHERE current_handler_user_id = $1
		  AND status IN ('PENDING', 'IN_REVIEW', 'REVISION_REQUESTED')`, userID)
	return count, err
}

func (r *postgresRepository) CountDueWithin(ctx context.Context, userID uuid.UUID, cutoff time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM documents
		WHERE current_handler_user_id = $1
		  AND due_date IS NOT NULL
		  AND due_date <= $2
		  AND status NOT IN ('APPROVED', 'REJECTED', 'COMPLETED')`, userID, cutoff)
	return count, err
}

func (r *postgresRepository) RecentActivity(ctx context.Context, userID uuid.UUID, limit int) ([]ActivityEntry, error) {
	entries := []ActivityEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT h.document_id, d.document_number, d.title, h.action,
		       h.from_user_id, h.to_user_id, h.created_at
		FROM workflow_history h
		JOIN documents d ON d.id = h.document_id
		WHERE h.from_user_id = $1 OR h.to_user_id = $1
		   OR d.created_by_user_id = $1 OR d.current_handler_user_id = $1
		ORDER BY h.created_at DESC, h.id DESC
		LIMIT $2`, userID, limit)
	return entries, err
}
