// Package storage persists expense records in SQLite. It is the only owner
// of the durable representation; everything above it works with core types.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"vydatky/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateExpense persists a new record, assigns its id and returns the stored
// expense.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (description, date, amount_local_cents, amount_ref_cents)
		 VALUES (?, ?, ?, ?)`,
		e.Description, e.Date.ISO(), e.AmountLocal.Cents, e.AmountRef.Cents)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"description", e.Description,
		"date", e.Date.String(),
		"amount_local_cents", e.AmountLocal.Cents,
		"amount_ref_cents", e.AmountRef.Cents)

	return e, nil
}

// GetExpense returns a single record or core.ErrNotFound.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, description, date, amount_local_cents, amount_ref_cents
		 FROM expenses WHERE id = ?`, id)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// ListByDateRange returns records with date in [start, end] inclusive,
// ordered by date ascending. No match yields an empty slice, not an error.
func (r *SQLiteRepository) ListByDateRange(ctx context.Context, start, end core.Date) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, date, amount_local_cents, amount_ref_cents
		 FROM expenses WHERE date BETWEEN ? AND ?
		 ORDER BY date ASC, id ASC`,
		start.ISO(), end.ISO())
	if err != nil {
		return nil, fmt.Errorf("query expenses by range: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

// ListAll returns every record ordered by date ascending.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, date, amount_local_cents, amount_ref_cents
		 FROM expenses ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query all expenses: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

// UpdateExpense overwrites description and both amounts of an existing
// record. The date is immutable after creation.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, id int64, description string, local, ref core.Money) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET description = ?, amount_local_cents = ?, amount_ref_cents = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		description, local.Cents, ref.Cents, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return core.Expense{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Expense updated",
		"id", id,
		"description", description,
		"amount_local_cents", local.Cents,
		"amount_ref_cents", ref.Cents)

	return r.GetExpense(ctx, id)
}

// DeleteExpense removes a record or reports core.ErrNotFound.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e       core.Expense
		isoDate string
	)
	if err := row.Scan(&e.ID, &e.Description, &isoDate, &e.AmountLocal.Cents, &e.AmountRef.Cents); err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseISODate(isoDate)
	if err != nil {
		return core.Expense{}, fmt.Errorf("stored date %q: %w", isoDate, err)
	}
	e.Date = date
	return e, nil
}

func collectExpenses(rows *sql.Rows) ([]core.Expense, error) {
	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}
