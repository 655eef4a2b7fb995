package services

import (
	"context"

	"vydatky/internal/core"
)

// Ports for the collaborators the service orchestrates.
type (
	// ExpenseRepository owns the durable representation of expenses.
	ExpenseRepository interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		GetExpense(ctx context.Context, id int64) (core.Expense, error)
		ListByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error)
		ListAll(ctx context.Context) ([]core.Expense, error)
		UpdateExpense(ctx context.Context, id int64, description string, local, ref core.Money) (core.Expense, error)
		DeleteExpense(ctx context.Context, id int64) error
	}

	// RateSource fetches the current local-per-reference exchange rate.
	// Failures wrap core.ErrRateUnavailable.
	RateSource interface {
		GetRate(ctx context.Context) (float64, error)
	}

	// EventPublisher announces committed changes for the async mirror.
	EventPublisher interface {
		PublishExpenseEvent(ctx context.Context, id int64, action string) error
	}
)
