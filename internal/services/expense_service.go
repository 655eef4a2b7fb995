// Package services holds the expense lifecycle orchestration: validation,
// currency conversion and persistence combined into one consistent unit of
// work per request.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"vydatky/internal/amqp"
	"vydatky/internal/core"
	"vydatky/internal/report"
)

// ExpenseService coordinates the store, the rate source and the report
// builder. A create or update either fully succeeds with a correctly priced
// record or fails with nothing written; no record is ever persisted without
// a valid conversion snapshot.
type ExpenseService struct {
	repo   ExpenseRepository
	rates  RateSource
	events EventPublisher
}

// NewExpenseService wires the service. events may be nil, in which case
// change events are skipped.
func NewExpenseService(repo ExpenseRepository, rates RateSource, events EventPublisher) *ExpenseService {
	return &ExpenseService{repo: repo, rates: rates, events: events}
}

// AddExpense validates the input, fetches a fresh rate, prices the expense in
// the reference currency and persists it. date is dd.mm.yyyy; amount is a
// decimal string with dot or comma separator.
func (s *ExpenseService) AddExpense(ctx context.Context, description, date, amount string) (core.Expense, error) {
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, err
	}
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.Expense{}, err
	}

	expense := core.Expense{
		Description: strings.TrimSpace(description),
		Date:        d,
		AmountLocal: core.Money{Cents: cents},
	}
	if expense.Description == "" {
		return core.Expense{}, core.ErrEmptyDescription
	}

	rate, err := s.rates.GetRate(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Rate lookup failed, aborting create", "error", err)
		return core.Expense{}, err
	}
	expense.AmountRef, err = core.ConvertToReference(expense.AmountLocal, rate)
	if err != nil {
		return core.Expense{}, err
	}

	if err := expense.Validate(); err != nil {
		return core.Expense{}, err
	}

	stored, err := s.repo.CreateExpense(ctx, expense)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"id", stored.ID,
		"date", stored.Date.String(),
		"amount_local", stored.AmountLocal.String(),
		"amount_ref", stored.AmountRef.String(),
		"rate", rate)

	s.publishEvent(ctx, stored.ID, amqp.ActionCreated)
	return stored, nil
}

// GetExpense returns one record by id.
func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return s.repo.GetExpense(ctx, id)
}

// ListExpenses returns records with date in [start, end] inclusive, ordered
// by date ascending. Zero matches is a valid, empty result.
func (s *ExpenseService) ListExpenses(ctx context.Context, start, end string) ([]core.Expense, error) {
	from, to, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByDateRange(ctx, from, to)
}

// ListAllExpenses returns every record ordered by date ascending.
func (s *ExpenseService) ListAllExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.repo.ListAll(ctx)
}

// UpdateExpense replaces the description and local amount of an existing
// record and recomputes the reference snapshot from a freshly fetched rate.
// The lookup happens before the rate call so an unknown id never costs an
// upstream fetch.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, description, amount string) (core.Expense, error) {
	if _, err := s.repo.GetExpense(ctx, id); err != nil {
		return core.Expense{}, err
	}

	if strings.TrimSpace(description) == "" {
		return core.Expense{}, core.ErrEmptyDescription
	}
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.Expense{}, err
	}
	local := core.Money{Cents: cents}

	rate, err := s.rates.GetRate(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Rate lookup failed, aborting update", "error", err, "id", id)
		return core.Expense{}, err
	}
	ref, err := core.ConvertToReference(local, rate)
	if err != nil {
		return core.Expense{}, err
	}

	updated, err := s.repo.UpdateExpense(ctx, id, strings.TrimSpace(description), local, ref)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense updated",
		"id", id,
		"amount_local", local.String(),
		"amount_ref", ref.String(),
		"rate", rate)

	s.publishEvent(ctx, id, amqp.ActionUpdated)
	return updated, nil
}

// DeleteExpense removes a record by id.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.publishEvent(ctx, id, amqp.ActionDeleted)
	return nil
}

// BuildRangeReport renders the expenses of a date range as an xlsx document
// with a totals row. A range with no expenses is an error here: a report is
// a user-facing deliverable and must not be silently empty, unlike plain
// listing.
func (s *ExpenseService) BuildRangeReport(ctx context.Context, start, end string) ([]byte, error) {
	from, to, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}

	expenses, err := s.repo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("no expenses between %s and %s: %w", from, to, core.ErrNotFound)
	}

	return report.BuildReport(expenses)
}

// ExportAll renders every record as an xlsx dump with a header row and no
// totals, used for browsing before delete or update.
func (s *ExpenseService) ExportAll(ctx context.Context) ([]byte, error) {
	expenses, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return report.BuildInventory(expenses)
}

// publishEvent announces a committed change. Failures are logged and
// swallowed: the mirror is best-effort and must never fail the request.
func (s *ExpenseService) publishEvent(ctx context.Context, id int64, action string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseEvent(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"error", err, "id", id, "action", action)
	}
}

func parseRange(start, end string) (core.Date, core.Date, error) {
	from, err := core.ParseDate(start)
	if err != nil {
		return core.Date{}, core.Date{}, fmt.Errorf("start date: %w", err)
	}
	to, err := core.ParseDate(end)
	if err != nil {
		return core.Date{}, core.Date{}, fmt.Errorf("end date: %w", err)
	}
	if to.Before(from.Time) {
		return core.Date{}, core.Date{}, fmt.Errorf("%w: end date %s before start date %s", core.ErrValidation, to, from)
	}
	return from, to, nil
}
