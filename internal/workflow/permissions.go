package workflow

import (
	"fmt"

	"github.com/google/uuid"

	"docuflow/approval-portal/approval-portal-backend/internal/documents"
	"docuflow/approval-portal/approval-portal-backend/internal/users"
)

// Evaluator is the single place role and ownership rules for workflow
// routing are decided. Handlers and services must not re-derive these checks.
type Evaluator struct{}

// CheckOwnership verifies the actor is the document's current handler.
func (Evaluator) CheckOwnership(doc *documents.Document, actorID uuid.UUID) error {
	if doc.CurrentHandlerUserID == nil || *doc.CurrentHandlerUserID != actorID {
		return fmt.Errorf("user %s: %w", actorID, ErrPermissionDenied)
	}
	return nil
}

// CheckSubmitTarget verifies a submission target outranks the actor.
func (Evaluator) CheckSubmitTarget(actor, target *users.User) error {
	if target.RoleLevel <= actor.RoleLevel {
		return fmt.Errorf("submit target %s (level %d) must outrank actor (level %d): %w",
			target.ID, target.RoleLevel, actor.RoleLevel, ErrInvalidTarget)
	}
	return nil
}

// CheckRevisionTarget verifies a revision request goes to someone at or
// below the actor's level.
func (Evaluator) CheckRevisionTarget(actor, target *users.User) error {
	if target.RoleLevel > actor.RoleLevel {
		return fmt.Errorf("revision target %s (level %d) must not outrank actor (level %d): %w",
			target.ID, target.RoleLevel, actor.RoleLevel, ErrInvalidTarget)
	}
	return nil
}
