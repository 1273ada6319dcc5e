package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Notification types mirror workflow actions, plus the due-date reminder
// emitted by the background worker.
const (
	TypeSubmit          = "SUBMIT"
	TypeApprove         = "APPROVE"
	TypeReject          = "REJECT"
	TypeRevisionRequest = "REVISION_REQUEST"
	TypeDueDateReminder = "DUE_DATE_REMINDER"
)

// Notification is an in-app notification row. ReadAt is null until the user
// opens it.
type Notification struct {
	ID         uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	DocumentID uuid.UUID  `json:"document_id" gorm:"type:uuid;not null;index"`
	Type       string     `json:"type" gorm:"not null"`
	Title      string     `json:"title" gorm:"not null"`
	Comments   string     `json:"comments"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// WebSocketMessage is the frame pushed to connected clients.
type WebSocketMessage struct {
	Type      string        `json:"type"`
	Payload   *Notification `json:"payload,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
