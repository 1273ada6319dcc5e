package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docuflow/approval-portal/approval-portal-backend/internal/documents"
	"docuflow/approval-portal/approval-portal-backend/internal/users"
	"docuflow/approval-portal/approval-portal-backend/pkg/workflows"
)

// Store is the document persistence surface the engine needs. The documents
// repository satisfies it; transitions it applies are atomic.
type Store interface {
	GetDocumentByID(ctx context.Context, id uuid.UUID) (*documents.Document, error)
	ApplyTransition(ctx context.Context, t *documents.Transition) error
	ListHistory(ctx context.Context, documentID uuid.UUID) ([]documents.WorkflowHistory, error)
}

// Directory resolves users and department membership.
type Directory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*users.User, error)
	ListDepartmentUsers(ctx context.Context, departmentID uuid.UUID) ([]users.User, error)
}

// Event is emitted to the Notifier after every committed transition.
type Event struct {
	Type       documents.WorkflowAction `json:"type"`
	DocumentID uuid.UUID                `json:"document_id"`
	ToUserID   *uuid.UUID               `json:"to_user_id,omitempty"`
	Comments   string                   `json:"comments,omitempty"`
}

// Notifier delivers workflow events. Delivery happens after commit; a
// delivery failure never rolls back the transition.
type Notifier interface {
	NotifyTransition(ctx context.Context, event Event) error
}

// HandlerResolver picks the next handler when an approval escalates instead
// of terminating. It is a configuration point: deployments may route by
// department ladder, org chart or anything else.
type HandlerResolver interface {
	NextHandler(ctx context.Context, doc *documents.Document, actor *users.User) (*users.User, error)
}

// DepartmentLadderResolver resolves the next handler as the least-senior
// user in the document's department who still outranks the actor, breaking
// ties by earliest account creation.
type DepartmentLadderResolver struct {
	directory Directory
}

func NewDepartmentLadderResolver(directory Directory) *DepartmentLadderResolver {
	return &DepartmentLadderResolver{directory: directory}
}

func (r *DepartmentLadderResolver) NextHandler(ctx context.Context, doc *documents.Document, actor *users.User) (*users.User, error) {
	candidates, err := r.directory.ListDepartmentUsers(ctx, doc.DepartmentID)
	if err != nil {
		return nil, err
	}

	var best *users.User
	for i := range candidates {
		u := &candidates[i]
		if u.RoleLevel <= actor.RoleLevel {
			continue
		}
		if best == nil || u.RoleLevel < best.RoleLevel ||
			(u.RoleLevel == best.RoleLevel && u.CreatedAt.Before(best.CreatedAt)) {
			best = u
		}
	}
	return best, nil
}

// Engine drives the document approval state machine. It holds no state of
// its own; every operation is one atomic transition against the store.
type Engine struct {
	store     Store
	directory Directory
	machine   *workflows.StateMachine
	eval      Evaluator
	resolver  HandlerResolver
	notifier  Notifier
	logger    *zap.Logger
}

func NewEngine(store Store, directory Directory, resolver HandlerResolver, notifier Notifier, logger *zap.Logger) *Engine {
	return &Engine{
		store:     store,
		directory: directory,
		machine:   workflows.NewDocumentStateMachine(),
		resolver:  resolver,
		notifier:  notifier,
		logger:    logger,
	}
}

// Submit routes a DRAFT or REVISION_REQUESTED document to a more senior
// target for approval.
func (e *Engine) Submit(ctx context.Context, docID, actorID, targetID uuid.UUID, comments string) (*documents.Document, error) {
	doc, err := e.loadDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := e.eval.CheckOwnership(doc, actorID); err != nil {
		return nil, err
	}

	next, ok := e.machine.Next(string(doc.Status), workflows.ActionSubmit)
	if !ok {
		return nil, fmt.Errorf("submit from %s: %w", doc.Status, ErrInvalidState)
	}

	actor, err := e.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := e.loadUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := e.eval.CheckSubmitTarget(actor, target); err != nil {
		return nil, err
	}

	return e.apply(ctx, doc, documents.ActionSubmit, documents.DocumentStatus(next), &target.ID, actorID, comments)
}

// Approve either terminates the workflow at APPROVED or, with
// sendToNextLevel, re-enters PENDING with the next more senior handler.
func (e *Engine) Approve(ctx context.Context, docID, actorID uuid.UUID, comments string, sendToNextLevel bool) (*documents.Document, error) {
	doc, err := e.loadDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := e.eval.CheckOwnership(doc, actorID); err != nil {
		return nil, err
	}

	next, ok := e.machine.Next(string(doc.Status), workflows.ActionApprove)
	if !ok {
		return nil, fmt.Errorf("approve from %s: %w", doc.Status, ErrInvalidState)
	}

	if !sendToNextLevel {
		return e.apply(ctx, doc, documents.ActionApprove, documents.DocumentStatus(next), nil, actorID, comments)
	}

	actor, err := e.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	nextHandler, err := e.resolver.NextHandler(ctx, doc, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve next handler: %w", err)
	}
	if nextHandler == nil {
		return nil, fmt.Errorf("no user outranks %s for escalation: %w", actor.ID, ErrInvalidTarget)
	}

	return e.apply(ctx, doc, documents.ActionApprove, documents.StatusPending, &nextHandler.ID, actorID, comments)
}

// Reject terminates the workflow at REJECTED. Comments are mandatory.
func (e *Engine) Reject(ctx context.Context, docID, actorID uuid.UUID, comments string) (*documents.Document, error) {
	if strings.TrimSpace(comments) == "" {
		return nil, fmt.Errorf("reject requires comments: %w", ErrValidation)
	}

	doc, err := e.loadDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := e.eval.CheckOwnership(doc, actorID); err != nil {
		return nil, err
	}

	next, ok := e.machine.Next(string(doc.Status), workflows.ActionReject)
	if !ok {
		return nil, fmt.Errorf("reject from %s: %w", doc.Status, ErrInvalidState)
	}

	return e.apply(ctx, doc, documents.ActionReject, documents.DocumentStatus(next), nil, actorID, comments)
}

// RequestRevision sends the document back to someone at or below the
// actor's level for rework. Comments are mandatory.
func (e *Engine) RequestRevision(ctx context.Context, docID, actorID, targetID uuid.UUID, comments string) (*documents.Document, error) {
	if strings.TrimSpace(comments) == "" {
		return nil, fmt.Errorf("revision request requires comments: %w", ErrValidation)
	}

	doc, err := e.loadDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := e.eval.CheckOwnership(doc, actorID); err != nil {
		return nil, err
	}

	next, ok := e.machine.Next(string(doc.Status), workflows.ActionRevisionRequest)
	if !ok {
		return nil, fmt.Errorf("revision request from %s: %w", doc.Status, ErrInvalidState)
	}

	actor, err := e.loadUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	target, err := e.loadUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := e.eval.CheckRevisionTarget(actor, target); err != nil {
		return nil, err
	}

	return e.apply(ctx, doc, documents.ActionRevisionRequest, documents.DocumentStatus(next), &target.ID, actorID, comments)
}

// StartReview marks a PENDING document as opened by its handler. It keeps
// the handler, writes no audit entry and sends no notification.
func (e *Engine) StartReview(ctx context.Context, docID, actorID uuid.UUID) (*documents.Document, error) {
	doc, err := e.loadDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := e.eval.CheckOwnership(doc, actorID); err != nil {
		return nil, err
	}

	next, ok := e.machine.Next(string(doc.Status), workflows.ActionStartReview)
	if !ok {
		return nil, fmt.Errorf("start review from %s: %w", doc.Status, ErrInvalidState)
	}

	t := &documents.Transition{
		DocumentID:  doc.ID,
		FromStatus:  doc.Status,
		FromHandler: doc.CurrentHandlerUserID,
		ToStatus:    documents.DocumentStatus(next),
		ToHandler:   doc.CurrentHandlerUserID,
	}
	if err := e.store.ApplyTransition(ctx, t); err != nil {
		return nil, e.translateStoreError(err)
	}

	doc.Status = documents.DocumentStatus(next)
	doc.UpdatedAt = time.Now()
	return doc, nil
}

// History returns the document's audit trail, oldest first.
func (e *Engine) History(ctx context.Context, docID uuid.UUID) ([]documents.WorkflowHistory, error) {
	if _, err := e.loadDocument(ctx, docID); err != nil {
		return nil, err
	}
	return e.store.ListHistory(ctx, docID)
}

// AllowedActions lists the actions the given user may currently take on the
// document. Non-handlers get an empty list.
func (e *Engine) AllowedActions(ctx context.Context, docID, userID uuid.UUID) ([]string, error) {
	doc, err := e.loadDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if e.eval.CheckOwnership(doc, userID) != nil {
		return []string{}, nil
	}
	return e.machine.AllowedActions(string(doc.Status)), nil
}

// apply commits one transition and emits its event. History ToUserID always
// mirrors the new handler so the trail and the document never disagree.
func (e *Engine) apply(ctx context.Context, doc *documents.Document, action documents.WorkflowAction,
	toStatus documents.DocumentStatus, toHandler *uuid.UUID, actorID uuid.UUID, comments string) (*documents.Document, error) {

	t := &documents.Transition{
		DocumentID:  doc.ID,
		FromStatus:  doc.Status,
		FromHandler: doc.CurrentHandlerUserID,
		ToStatus:    toStatus,
		ToHandler:   toHandler,
		History: &documents.WorkflowHistory{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			Action:     action,
			FromUserID: actorID,
			ToUserID:   toHandler,
			Comments:   comments,
			CreatedAt:  time.Now(),
		},
	}

	if err := e.store.ApplyTransition(ctx, t); err != nil {
		return nil, e.translateStoreError(err)
	}

	doc.Status = toStatus
	doc.CurrentHandlerUserID = toHandler
	doc.UpdatedAt = time.Now()

	event := Event{
		Type:       action,
		DocumentID: doc.ID,
		ToUserID:   toHandler,
		Comments:   comments,
	}
	if err := e.notifier.NotifyTransition(ctx, event); err != nil {
		e.logger.Warn("Failed to deliver workflow notification",
			zap.String("document_id", doc.ID.String()),
			zap.String("action", string(action)),
			zap.Error(err))
	}

	return doc, nil
}

func (e *Engine) translateStoreError(err error) error {
	if errors.Is(err, documents.ErrConflict) {
		return fmt.Errorf("%w: %v", ErrConcurrentModification, err)
	}
	return err
}

func (e *Engine) loadDocument(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
	doc, err := e.store.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return doc, nil
}

func (e *Engine) loadUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	user, err := e.directory.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return user, nil
}
