// Package export writes the ledger to CSV and Excel files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/theirongolddev/savemoney/internal/model"

	"github.com/xuri/excelize/v2"
)

// Format names an export file format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx" (case-insensitive), or infers the
// format from a file name's extension.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(s)
	switch {
	case s == "csv" || strings.HasSuffix(s, ".csv"):
		return CSV, nil
	case s == "xlsx" || strings.HasSuffix(s, ".xlsx"):
		return XLSX, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or xlsx)", s)
	}
}

const dateLayout = "2006-01-02 15:04"

var header = []string{"ID", "Date", "Type", "Name", "Category", "Amount"}

// formatDate writes t as wall-clock time in loc, the zone the ledger
// assigns days in. A nil loc means time.Local.
func formatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dateLayout)
}

func record(t model.Transaction, loc *time.Location) []string {
	return []string{
		t.ID,
		formatDate(t.Date, loc),
		string(t.Type),
		t.Name,
		t.CategoryOr(""),
		t.Amount.String(),
	}
}

// WriteCSV writes one row per transaction with dates in loc. A UTF-8 BOM is
// written first so spreadsheet programs detect the encoding.
func WriteCSV(w io.Writer, txs []model.Transaction, loc *time.Location) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, t := range txs {
		if err := cw.Write(record(t, loc)); err != nil {
			return fmt.Errorf("writing %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"
)

// WriteXLSX writes a workbook with a Transactions sheet and a Summary sheet
// built from status. Dates are written in loc.
func WriteXLSX(w io.Writer, txs []model.Transaction, status model.BudgetStatus, loc *time.Location) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("creating money style: %w", err)
	}

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(transactionsSheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(transactionsSheet, "A1", "F1", bold); err != nil {
		return err
	}

	for idx, t := range txs {
		row := idx + 2
		values := []any{t.ID, formatDate(t.Date, loc), string(t.Type), t.Name, t.CategoryOr(""), t.Amount.InexactFloat64()}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(transactionsSheet, cell, v); err != nil {
				return fmt.Errorf("writing %s: %w", cell, err)
			}
		}
	}
	if len(txs) > 0 {
		last, _ := excelize.CoordinatesToCellName(6, len(txs)+1)
		if err := f.SetCellStyle(transactionsSheet, "F2", last, money); err != nil {
			return err
		}
	}

	widths := map[string]float64{"A": 38, "B": 18, "C": 10, "D": 30, "E": 16, "F": 16}
	for col, wd := range widths {
		if err := f.SetColWidth(transactionsSheet, col, col, wd); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	summary := [][2]any{
		{"Total balance", status.TotalBalance.InexactFloat64()},
		{"Monthly target", status.MonthlyTarget.InexactFloat64()},
		{"Spent this month", status.TotalSpentThisMonth.InexactFloat64()},
		{"Remaining budget", status.RemainingBudget.InexactFloat64()},
		{"Daily target", status.DailyBudgetTarget.InexactFloat64()},
		{"Spent today", status.TodaysTotalSpending.InexactFloat64()},
		{"Daily status", string(status.DailyStatus)},
		{"Generated", formatDate(status.At, loc)},
	}
	for i, kv := range summary {
		row := i + 1
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), kv[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "B1", "B6", money); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 20); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}
