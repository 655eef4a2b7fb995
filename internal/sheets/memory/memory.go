// Package memory is an in-process RowAppender for tests and local runs.
package memory

import (
	"context"
	"sync"

	"vydatky/internal/sheets"
)

type Appender struct {
	mu   sync.Mutex
	rows [][]any
}

var _ sheets.RowAppender = (*Appender)(nil)

func New() *Appender {
	return &Appender{}
}

func (a *Appender) AppendRow(_ context.Context, values []any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	row := make([]any, len(values))
	copy(row, values)
	a.rows = append(a.rows, row)
	return nil
}

// Rows returns a snapshot of everything appended so far.
func (a *Appender) Rows() [][]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([][]any, len(a.rows))
	copy(out, a.rows)
	return out
}
