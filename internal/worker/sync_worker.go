// Package worker bridges the expense event queue to the backup sheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"kharcha/internal/amqp"
	"kharcha/internal/sheets"
)

// SyncWorker turns consumed expense events into backup-sheet rows.
type SyncWorker struct {
	appender sheets.BackupAppender
}

func NewSyncWorker(appender sheets.BackupAppender) *SyncWorker {
	return &SyncWorker{appender: appender}
}

// HandleEvent appends one event to the backup sheet. An error tells the
// consumer to requeue the delivery.
func (w *SyncWorker) HandleEvent(ctx context.Context, event *amqp.ExpenseEvent) error {
	slog.InfoContext(ctx, "Processing expense event",
		"type", event.Type,
		"expense_id", event.ID,
		"user_id", event.Owner)

	row := sheets.BackupRow{
		Event:       event.Type,
		ExpenseID:   event.ID,
		Owner:       event.Owner,
		Date:        event.Date,
		Title:       event.Title,
		Amount:      float64(event.AmountCents) / 100.0,
		Category:    event.Category,
		Description: event.Description,
	}

	if err := w.appender.AppendRow(ctx, row); err != nil {
		return fmt.Errorf("append backup row: %w", err)
	}
	return nil
}
