package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"docuflow/approval-portal/approval-portal-backend/internal/documents"
	"docuflow/approval-portal/approval-portal-backend/internal/notifications/websocket"
	"docuflow/approval-portal/approval-portal-backend/internal/workflow"
)

var ErrNotFound = errors.New("notification not found")

// DocumentSource resolves documents for notification text and fallback
// routing. The documents repository satisfies it.
type DocumentSource interface {
	GetDocumentByID(ctx context.Context, id uuid.UUID) (*documents.Document, error)
}

// Service persists in-app notifications and pushes them to connected
// clients. It satisfies the workflow engine's Notifier.
type Service struct {
	db        *gorm.DB
	wsManager *websocket.Manager
	docs      DocumentSource
	logger    *zap.Logger
}

func NewService(db *gorm.DB, wsManager *websocket.Manager, docs DocumentSource, logger *zap.Logger) (*Service, error) {
	if err := db.AutoMigrate(&Notification{}); err != nil {
		return nil, fmt.Errorf("failed to migrate notifications: %w", err)
	}

	return &Service{
		db:        db,
		wsManager: wsManager,
		docs:      docs,
		logger:    logger,
	}, nil
}

// NotifyTransition records a workflow event for its recipient. Terminal
// transitions carry no new handler and are routed to the document's creator.
func (s *Service) NotifyTransition(ctx context.Context, event workflow.Event) error {
	doc, err := s.docs.GetDocumentByID(ctx, event.DocumentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document %s: %w", event.DocumentID, ErrNotFound)
	}

	recipient := doc.CreatedByUserID
	if event.ToUserID != nil {
		recipient = *event.ToUserID
	}

	return s.deliver(ctx, &Notification{
		ID:         uuid.New(),
		UserID:     recipient,
		DocumentID: doc.ID,
		Type:       string(event.Type),
		Title:      transitionTitle(doc, event.Type, event.ToUserID != nil),
		Comments:   event.Comments,
	})
}

// NotifyDueSoon reminds a document's current handler of an approaching due
// date. Documents without a handler are skipped.
func (s *Service) NotifyDueSoon(ctx context.Context, doc *documents.Document) error {
	if doc.CurrentHandlerUserID == nil || doc.DueDate == nil {
		return nil
	}

	return s.deliver(ctx, &Notification{
		ID:         uuid.New(),
		UserID:     *doc.CurrentHandlerUserID,
		DocumentID: doc.ID,
		Type:       TypeDueDateReminder,
		Title:      fmt.Sprintf("Document %s is due %s", doc.DocumentNumber, doc.DueDate.Format("2006-01-02")),
	})
}

func (s *Service) deliver(ctx context.Context, n *Notification) error {
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	// Push is best effort; the row is the source of truth.
	s.wsManager.SendToUser(n.UserID, WebSocketMessage{
		Type:      n.Type,
		Payload:   n,
		Timestamp: time.Now(),
	})
	return nil
}

// RecentlyReminded reports whether a due-date reminder for the document was
// already delivered to the user after the given time. The reminder worker
// uses it to avoid repeating itself every scan.
func (s *Service) RecentlyReminded(ctx context.Context, userID, documentID uuid.UUID, since time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND document_id = ? AND type = ? AND created_at > ?",
			userID, documentID, TypeDueDateReminder, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var rows []Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return rows, nil
}

// MarkRead stamps ReadAt on one of the user's notifications.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func transitionTitle(doc *documents.Document, action documents.WorkflowAction, routed bool) string {
	switch action {
	case documents.ActionSubmit:
		return fmt.Sprintf("Document %s was submitted for your approval", doc.DocumentNumber)
	case documents.ActionApprove:
		if routed {
			return fmt.Sprintf("Document %s was approved and now awaits your approval", doc.DocumentNumber)
		}
		return fmt.Sprintf("Document %s was approved", doc.DocumentNumber)
	case documents.ActionReject:
		return fmt.Sprintf("Document %s was rejected", doc.DocumentNumber)
	case documents.ActionRevisionRequest:
		return fmt.Sprintf("Document %s needs your revision", doc.DocumentNumber)
	default:
		return fmt.Sprintf("Document %s was updated", doc.DocumentNumber)
	}
}
