// Package export renders admin-facing downloads. Currently that is one
// artifact: the customer analytics workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	usersSheet   = "Users"
)

// userColumns is the Users sheet layout, in column order.
var userColumns = []string{"id", "name", "mobile", "is_premium", "created_at"}

// WriteAnalyticsWorkbook renders the users table into an XLSX workbook with a
// Summary sheet (totals) and a Users sheet (one row per account).
func WriteAnalyticsWorkbook(w io.Writer, users []map[string]any, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}
	if _, err := f.NewSheet(usersSheet); err != nil {
		return fmt.Errorf("creating users sheet: %w", err)
	}

	premium := 0
	for _, u := range users {
		if p, ok := u["is_premium"].(bool); ok && p {
			premium++
		}
	}

	summary := [][2]any{
		{"Generated at", generatedAt.UTC().Format(time.RFC3339)},
		{"Total users", len(users)},
		{"Premium users", premium},
		{"Free users", len(users) - premium},
	}
	for i, row := range summary {
		cellA, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		cellB, err := excelize.CoordinatesToCellName(2, i+1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, cellA, row[0]); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
		if err := f.SetCellValue(summarySheet, cellB, row[1]); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}

	for col, name := range userColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(usersSheet, cell, name); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for rowIdx, u := range users {
		for col, name := range userColumns {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(usersSheet, cell, cellValue(u[name])); err != nil {
				return fmt.Errorf("writing user row %d: %w", rowIdx+1, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// cellValue flattens values excelize has no native cell type for.
func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return v
	}
}
