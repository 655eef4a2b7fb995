// Package worker consumes expense change events and mirrors them into a
// spreadsheet. The mirror is append-only: creates and updates re-read the
// record from storage and append its current state, deletes append a
// tombstone row.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vydatky/internal/amqp"
	"vydatky/internal/core"
	"vydatky/internal/sheets"
)

// ExpenseReader is the slice of storage the worker needs.
type ExpenseReader interface {
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
}

type MirrorWorker struct {
	storage ExpenseReader
	rows    sheets.RowAppender
}

func NewMirrorWorker(storage ExpenseReader, rows sheets.RowAppender) *MirrorWorker {
	return &MirrorWorker{storage: storage, rows: rows}
}

// HandleEvent processes one change event. Returning an error makes the
// consumer requeue the delivery.
func (w *MirrorWorker) HandleEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	slog.InfoContext(ctx, "Processing expense event",
		"id", msg.ID,
		"action", msg.Action)

	switch msg.Action {
	case amqp.ActionCreated, amqp.ActionUpdated:
		return w.mirrorCurrentState(ctx, msg)
	case amqp.ActionDeleted:
		return w.mirrorTombstone(ctx, msg)
	default:
		// Validate() upstream should have rejected this already.
		return fmt.Errorf("unknown action %q", msg.Action)
	}
}

func (w *MirrorWorker) mirrorCurrentState(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	expense, err := w.storage.GetExpense(ctx, msg.ID)
	if err != nil {
		// The record may have been deleted between the event and now; the
		// delete event will carry the tombstone, so this one is moot.
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Expense gone before mirroring, skipping",
				"id", msg.ID,
				"action", msg.Action)
			return nil
		}
		return fmt.Errorf("get expense %d: %w", msg.ID, err)
	}

	row := []any{
		expense.ID,
		expense.Description,
		expense.Date.String(),
		expense.AmountLocal.Units(),
		expense.AmountRef.Units(),
		msg.Action,
	}
	if err := w.rows.AppendRow(ctx, row); err != nil {
		return fmt.Errorf("append expense %d: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Mirrored expense",
		"id", expense.ID,
		"action", msg.Action,
		"description", expense.Description)
	return nil
}

func (w *MirrorWorker) mirrorTombstone(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	row := []any{
		msg.ID,
		"",
		msg.Timestamp.Format(time.RFC3339),
		"",
		"",
		amqp.ActionDeleted,
	}
	if err := w.rows.AppendRow(ctx, row); err != nil {
		return fmt.Errorf("append tombstone for expense %d: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Mirrored expense deletion", "id", msg.ID)
	return nil
}
