package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"vydatky/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testExpense(day int) core.Expense {
	return core.Expense{
		Description: "Coffee",
		Date:        core.NewDate(2024, 3, day),
		AmountLocal: core.Money{Cents: 10000},
		AmountRef:   core.Money{Cents: 250},
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateExpense(ctx, testExpense(1))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := repo.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got != created {
		t.Fatalf("round trip mismatch: got %+v, created %+v", got, created)
	}

	// Repeated reads return identical results.
	again, err := repo.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetExpense again: %v", err)
	}
	if again != got {
		t.Fatalf("repeated read differs: %+v vs %+v", again, got)
	}
}

func TestGetExpenseNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetExpense(context.Background(), 42)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestListByDateRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Insert out of order to verify sorting.
	for _, day := range []int{15, 1, 31, 10} {
		if _, err := repo.CreateExpense(ctx, testExpense(day)); err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}
	}
	outside := testExpense(1)
	outside.Date = core.NewDate(2024, 4, 5)
	if _, err := repo.CreateExpense(ctx, outside); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	got, err := repo.ListByDateRange(ctx, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	if err != nil {
		t.Fatalf("ListByDateRange: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	wantDays := []int{1, 10, 15, 31} // inclusive bounds, ascending
	for i, e := range got {
		if e.Date.Day() != wantDays[i] {
			t.Fatalf("position %d has day %d, want %d", i, e.Date.Day(), wantDays[i])
		}
	}
}

func TestListByDateRangeEmpty(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.ListByDateRange(context.Background(), core.NewDate(2030, 1, 1), core.NewDate(2030, 1, 31))
	if err != nil {
		t.Fatalf("ListByDateRange: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

func TestListAllOrdered(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, day := range []int{20, 5, 12} {
		if _, err := repo.CreateExpense(ctx, testExpense(day)); err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}
	}

	got, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	wantDays := []int{5, 12, 20}
	if len(got) != len(wantDays) {
		t.Fatalf("len = %d, want %d", len(got), len(wantDays))
	}
	for i, e := range got {
		if e.Date.Day() != wantDays[i] {
			t.Fatalf("position %d has day %d, want %d", i, e.Date.Day(), wantDays[i])
		}
	}
}

func TestUpdateExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateExpense(ctx, testExpense(1))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	updated, err := repo.UpdateExpense(ctx, created.ID, "Lunch", core.Money{Cents: 20000}, core.Money{Cents: 500})
	if err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	if updated.Description != "Lunch" || updated.AmountLocal.Cents != 20000 || updated.AmountRef.Cents != 500 {
		t.Fatalf("update not applied: %+v", updated)
	}
	if !updated.Date.Equal(created.Date) {
		t.Fatalf("date changed on update: %v -> %v", created.Date, updated.Date)
	}

	_, err = repo.UpdateExpense(ctx, 9999, "x", core.Money{Cents: 1}, core.Money{Cents: 1})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateExpense(ctx, testExpense(1))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	if err := repo.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if _, err := repo.GetExpense(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("deleted record still readable: %v", err)
	}

	// Deleting a nonexistent id reports ErrNotFound and changes nothing.
	if err := repo.DeleteExpense(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
