// Package report renders expense records into downloadable xlsx documents.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"vydatky/internal/core"
)

const sheetName = "Expenses"

var header = []interface{}{"ID", "Description", "Date", "Amount (UAH)", "Amount (USD)"}

// BuildReport renders one row per expense in input order and appends a totals
// row summing both amount columns. Cell values are deterministic for an
// identical input sequence.
func BuildReport(expenses []core.Expense) ([]byte, error) {
	f, rows, err := renderRows(expenses)
	if err != nil {
		return nil, err
	}

	var totalLocal, totalRef int64
	for _, e := range expenses {
		totalLocal += e.AmountLocal.Cents
		totalRef += e.AmountRef.Cents
	}
	totals := []interface{}{"", "", "Total:", core.Money{Cents: totalLocal}.Units(), core.Money{Cents: totalRef}.Units()}
	if err := f.SetSheetRow(sheetName, cellRef(rows+1), &totals); err != nil {
		return nil, fmt.Errorf("write totals row: %w", err)
	}

	return save(f)
}

// BuildInventory renders the browse-before-edit dump: header and rows only,
// no totals.
func BuildInventory(expenses []core.Expense) ([]byte, error) {
	f, _, err := renderRows(expenses)
	if err != nil {
		return nil, err
	}
	return save(f)
}

// renderRows writes the header and one row per expense, returning the number
// of rows written so far.
func renderRows(expenses []core.Expense) (*excelize.File, int, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, cellRef(1), &header); err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("write header: %w", err)
	}

	for i, e := range expenses {
		row := []interface{}{
			e.ID,
			e.Description,
			e.Date.String(),
			e.AmountLocal.Units(),
			e.AmountRef.Units(),
		}
		if err := f.SetSheetRow(sheetName, cellRef(i+2), &row); err != nil {
			f.Close()
			return nil, 0, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	return f, len(expenses) + 1, nil
}

func save(f *excelize.File) ([]byte, error) {
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellRef(row int) string {
	return fmt.Sprintf("A%d", row)
}
