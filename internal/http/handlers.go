package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"vydatky/internal/core"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// expenseJSON is the wire form of a stored expense. Dates render as
// dd.mm.yyyy, amounts as 2-decimal unit values.
type expenseJSON struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	AmountLocal float64 `json:"amount_local"`
	AmountRef   float64 `json:"amount_ref"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		Description: e.Description,
		Date:        e.Date.String(),
		AmountLocal: e.AmountLocal.Units(),
		AmountRef:   e.AmountRef.Units(),
	}
}

// amountValue accepts the local amount either as a JSON number or as a
// string, so clients may pass user input like "100,50" through untouched.
type amountValue string

func (a *amountValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = amountValue(n.String())
	return nil
}

type createExpenseRequest struct {
	Description string      `json:"description"`
	Date        string      `json:"date"`
	AmountLocal amountValue `json:"amount_local"`
}

type updateExpenseRequest struct {
	Description string      `json:"description"`
	AmountLocal amountValue `json:"amount_local"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}

	expense, err := s.api.AddExpense(r.Context(), req.Description, req.Date, string(req.AmountLocal))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseJSON(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")

	var (
		expenses []core.Expense
		err      error
	)
	if start == "" && end == "" {
		expenses, err = s.api.ListAllExpenses(r.Context())
	} else {
		expenses, err = s.api.ListExpenses(r.Context(), start, end)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]expenseJSON, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseJSON(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := s.api.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toExpenseJSON(expense))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}

	expense, err := s.api.UpdateExpense(r.Context(), id, req.Description, string(req.AmountLocal))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toExpenseJSON(expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.api.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "expense deleted"})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")

	doc, err := s.api.BuildRangeReport(r.Context(), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeAttachment(w, doc, "expense_report.xlsx")
}

func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	doc, err := s.api.ExportAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeAttachment(w, doc, "all_expenses.xlsx")
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid expense id %q", core.ErrValidation, raw)
	}
	return id, nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeAttachment(w http.ResponseWriter, doc []byte, filename string) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// writeError maps the error taxonomy onto HTTP statuses: validation 422,
// unknown id 404, rate source down 502, anything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrRateUnavailable):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
