package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vydatky/internal/core"
)

// fakeAPI implements ExpenseAPI with canned behavior.
type fakeAPI struct {
	expense core.Expense
	list    []core.Expense
	doc     []byte
	err     error
}

func (f *fakeAPI) AddExpense(_ context.Context, description, date, amount string) (core.Expense, error) {
	return f.expense, f.err
}

func (f *fakeAPI) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	return f.expense, f.err
}

func (f *fakeAPI) ListExpenses(_ context.Context, start, end string) ([]core.Expense, error) {
	return f.list, f.err
}

func (f *fakeAPI) ListAllExpenses(_ context.Context) ([]core.Expense, error) {
	return f.list, f.err
}

func (f *fakeAPI) UpdateExpense(_ context.Context, id int64, description, amount string) (core.Expense, error) {
	return f.expense, f.err
}

func (f *fakeAPI) DeleteExpense(_ context.Context, id int64) error {
	return f.err
}

func (f *fakeAPI) BuildRangeReport(_ context.Context, start, end string) ([]byte, error) {
	return f.doc, f.err
}

func (f *fakeAPI) ExportAll(_ context.Context) ([]byte, error) {
	return f.doc, f.err
}

func sampleExpense() core.Expense {
	return core.Expense{
		ID:          1,
		Description: "Coffee",
		Date:        core.NewDate(2024, 3, 1),
		AmountLocal: core.Money{Cents: 10000},
		AmountRef:   core.Money{Cents: 250},
	}
}

func doRequest(t *testing.T, api ExpenseAPI, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	srv := NewServer(":0", api)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateExpense(t *testing.T) {
	api := &fakeAPI{expense: sampleExpense()}
	rec := doRequest(t, api, http.MethodPost, "/expenses",
		`{"description":"Coffee","date":"01.03.2024","amount_local":100}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body)
	}

	var got expenseJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != 1 || got.Date != "01.03.2024" || got.AmountLocal != 100 || got.AmountRef != 2.5 {
		t.Fatalf("response = %+v", got)
	}
}

func TestCreateExpenseErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("%w: bad date", core.ErrValidation), http.StatusUnprocessableEntity},
		{"rate down", fmt.Errorf("oops: %w", core.ErrRateUnavailable), http.StatusBadGateway},
		{"other", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{err: tc.err}
			rec := doRequest(t, api, http.MethodPost, "/expenses",
				`{"description":"x","date":"01.03.2024","amount_local":1}`)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), "error") {
				t.Fatalf("body = %s", rec.Body)
			}
		})
	}
}

func TestCreateExpenseRejectsBadJSON(t *testing.T) {
	rec := doRequest(t, &fakeAPI{}, http.MethodPost, "/expenses", `{"description":`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestListExpenses(t *testing.T) {
	api := &fakeAPI{list: []core.Expense{sampleExpense()}}
	rec := doRequest(t, api, http.MethodGet, "/expenses?start_date=01.03.2024&end_date=31.03.2024", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []expenseJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].Description != "Coffee" {
		t.Fatalf("response = %+v", got)
	}
}

func TestListExpensesEmptyIsOK(t *testing.T) {
	api := &fakeAPI{list: []core.Expense{}}
	rec := doRequest(t, api, http.MethodGet, "/expenses?start_date=01.03.2024&end_date=31.03.2024", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("body = %q, want []", rec.Body.String())
	}
}

func TestListExpensesWithoutRangeListsAll(t *testing.T) {
	api := &fakeAPI{list: []core.Expense{sampleExpense()}}
	rec := doRequest(t, api, http.MethodGet, "/expenses", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []expenseJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("response = %+v", got)
	}
}

func TestGetExpenseNotFound(t *testing.T) {
	api := &fakeAPI{err: fmt.Errorf("expense 7: %w", core.ErrNotFound)}
	rec := doRequest(t, api, http.MethodGet, "/expenses/7", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetExpenseBadID(t *testing.T) {
	rec := doRequest(t, &fakeAPI{}, http.MethodGet, "/expenses/banana", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestUpdateExpense(t *testing.T) {
	api := &fakeAPI{expense: sampleExpense()}
	rec := doRequest(t, api, http.MethodPut, "/expenses/1",
		`{"description":"Coffee","amount_local":"100,50"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body)
	}
}

func TestDeleteExpense(t *testing.T) {
	rec := doRequest(t, &fakeAPI{}, http.MethodDelete, "/expenses/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "deleted") {
		t.Fatalf("body = %s", rec.Body)
	}
}

func TestReportHeaders(t *testing.T) {
	api := &fakeAPI{doc: []byte("xlsx-bytes")}
	rec := doRequest(t, api, http.MethodGet, "/expenses/report?start_date=01.03.2024&end_date=31.03.2024", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "expense_report.xlsx") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	if rec.Body.String() != "xlsx-bytes" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestReportEmptyRangeIs404(t *testing.T) {
	api := &fakeAPI{err: fmt.Errorf("no expenses: %w", core.ErrNotFound)}
	rec := doRequest(t, api, http.MethodGet, "/expenses/report?start_date=01.03.2024&end_date=31.03.2024", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestExportAll(t *testing.T) {
	api := &fakeAPI{doc: []byte("dump")}
	rec := doRequest(t, api, http.MethodGet, "/expenses/all", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "all_expenses.xlsx") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, &fakeAPI{}, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
