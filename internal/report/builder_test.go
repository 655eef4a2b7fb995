package report

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"vydatky/internal/core"
)

func sampleExpenses() []core.Expense {
	return []core.Expense{
		{
			ID:          1,
			Description: "Coffee",
			Date:        core.NewDate(2024, 3, 1),
			AmountLocal: core.Money{Cents: 10000},
			AmountRef:   core.Money{Cents: 250},
		},
		{
			ID:          2,
			Description: "Books",
			Date:        core.NewDate(2024, 3, 15),
			AmountLocal: core.Money{Cents: 20000},
			AmountRef:   core.Money{Cents: 500},
		},
	}
}

func openSheet(t *testing.T, doc []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(doc))
	if err != nil {
		t.Fatalf("open generated workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheetName, ref)
	if err != nil {
		t.Fatalf("read cell %s: %v", ref, err)
	}
	return v
}

func TestBuildReport(t *testing.T) {
	doc, err := BuildReport(sampleExpenses())
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	f := openSheet(t, doc)

	if got := cell(t, f, "A1"); got != "ID" {
		t.Errorf("header A1 = %q", got)
	}
	if got := cell(t, f, "B2"); got != "Coffee" {
		t.Errorf("B2 = %q, want Coffee", got)
	}
	if got := cell(t, f, "C2"); got != "01.03.2024" {
		t.Errorf("C2 = %q, want 01.03.2024", got)
	}
	if got := cell(t, f, "D2"); got != "100" {
		t.Errorf("D2 = %q, want 100", got)
	}
	if got := cell(t, f, "E2"); got != "2.5" {
		t.Errorf("E2 = %q, want 2.5", got)
	}

	// Totals row: local 100+200=300, reference 2.5+5=7.5.
	if got := cell(t, f, "C4"); got != "Total:" {
		t.Errorf("C4 = %q, want Total:", got)
	}
	if got := cell(t, f, "D4"); got != "300" {
		t.Errorf("D4 = %q, want 300", got)
	}
	if got := cell(t, f, "E4"); got != "7.5" {
		t.Errorf("E4 = %q, want 7.5", got)
	}
}

func TestBuildInventoryOmitsTotals(t *testing.T) {
	doc, err := BuildInventory(sampleExpenses())
	if err != nil {
		t.Fatalf("BuildInventory: %v", err)
	}
	f := openSheet(t, doc)

	if got := cell(t, f, "B3"); got != "Books" {
		t.Errorf("B3 = %q, want Books", got)
	}
	// Row 4 would hold the totals in report mode; here it must be empty.
	if got := cell(t, f, "C4"); got != "" {
		t.Errorf("C4 = %q, want empty", got)
	}
	if got := cell(t, f, "D4"); got != "" {
		t.Errorf("D4 = %q, want empty", got)
	}
}

func TestBuildReportDeterministic(t *testing.T) {
	first, err := BuildReport(sampleExpenses())
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	second, err := BuildReport(sampleExpenses())
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}

	a := openSheet(t, first)
	b := openSheet(t, second)
	for _, ref := range []string{"A2", "B2", "C2", "D2", "E2", "D4", "E4"} {
		if cell(t, a, ref) != cell(t, b, ref) {
			t.Fatalf("cell %s differs between identical inputs", ref)
		}
	}
}

func TestBuildInventoryEmpty(t *testing.T) {
	doc, err := BuildInventory(nil)
	if err != nil {
		t.Fatalf("BuildInventory: %v", err)
	}
	f := openSheet(t, doc)
	if got := cell(t, f, "A1"); got != "ID" {
		t.Errorf("A1 = %q, want ID", got)
	}
}
