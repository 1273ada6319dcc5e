package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"docuflow/approval-portal/approval-portal-backend/internal/documents"
	"docuflow/approval-portal/approval-portal-backend/internal/notifications"
)

// ReminderWorker scans for documents whose due date falls inside the
// configured window and reminds their current handlers.
type ReminderWorker struct {
	docs          documents.Repository
	notifications *notifications.Service
	logger        *zap.Logger
	config        ReminderWorkerConfig
	cron          *cron.Cron
}

// ReminderWorkerConfig configuration for the reminder worker
type ReminderWorkerConfig struct {
	Schedule    string
	Window      time.Duration
	RepeatAfter time.Duration
	ScanTimeout time.Duration
}

// DefaultReminderWorkerConfig returns default configuration
func DefaultReminderWorkerConfig() ReminderWorkerConfig {
	return ReminderWorkerConfig{
		Schedule:    "@hourly",
		Window:      48 * time.Hour,
		RepeatAfter: 24 * time.Hour,
		ScanTimeout: 5 * time.Minute,
	}
}

// NewReminderWorker creates a new reminder worker
func NewReminderWorker(docs documents.Repository, notificationService *notifications.Service,
	logger *zap.Logger, config ReminderWorkerConfig) *ReminderWorker {
	return &ReminderWorker{
		docs:          docs,
		notifications: notificationService,
		logger:        logger,
		config:        config,
		cron:          cron.New(),
	}
}

// Start schedules the periodic scan and runs one immediately.
func (w *ReminderWorker) Start() error {
	w.logger.Info("Starting reminder worker",
		zap.String("schedule", w.config.Schedule),
		zap.Duration("window", w.config.Window))

	if _, err := w.cron.AddFunc(w.config.Schedule, w.scan); err != nil {
		return err
	}

	w.scan()
	w.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running scan to finish.
func (w *ReminderWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.logger.Info("Reminder worker stopped")
}

func (w *ReminderWorker) scan() {
	ctx, cancel := context.WithTimeout(context.Background(), w.config.ScanTimeout)
	defer cancel()

	cutoff := time.Now().Add(w.config.Window)
	docs, err := w.docs.ListDueSoon(ctx, cutoff)
	if err != nil {
		w.logger.Error("Failed to list documents due soon", zap.Error(err))
		return
	}

	if len(docs) == 0 {
		return
	}
	w.logger.Info("Scanning documents due soon", zap.Int("count", len(docs)))

	reminded := 0
	for i := range docs {
		doc := &docs[i]
		if doc.CurrentHandlerUserID == nil || doc.DueDate == nil {
			continue
		}

		since := time.Now().Add(-w.config.RepeatAfter)
		already, err := w.notifications.RecentlyReminded(ctx, *doc.CurrentHandlerUserID, doc.ID, since)
		if err != nil {
			w.logger.Error("Failed to check reminder history",
				zap.String("document_id", doc.ID.String()),
				zap.Error(err))
			continue
		}
		if already {
			continue
		}

		if err := w.notifications.NotifyDueSoon(ctx, doc); err != nil {
			w.logger.Error("Failed to send due-date reminder",
				zap.String("document_id", doc.ID.String()),
				zap.Error(err))
			continue
		}
		reminded++
	}

	if reminded > 0 {
		w.logger.Info("Due-date reminders sent", zap.Int("count", reminded))
	}
}
