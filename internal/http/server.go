// Package http exposes the expense service as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"vydatky/internal/core"
	applog "vydatky/internal/log"
)

// ExpenseAPI is the surface the handlers need from the service layer.
type ExpenseAPI interface {
	AddExpense(ctx context.Context, description, date, amount string) (core.Expense, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context, start, end string) ([]core.Expense, error)
	ListAllExpenses(ctx context.Context) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, id int64, description, amount string) (core.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	BuildRangeReport(ctx context.Context, start, end string) ([]byte, error)
	ExportAll(ctx context.Context) ([]byte, error)
}

type Server struct {
	http.Server
	api ExpenseAPI
}

func NewServer(addr string, api ExpenseAPI) *Server {
	s := &Server{api: api}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("GET /expenses/all", s.handleExportAll)
	mux.HandleFunc("GET /expenses/report", s.handleReport)
	mux.HandleFunc("GET /expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.Server = http.Server{
		Addr:           addr,
		Handler:        applog.RequestLogger(mux),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
