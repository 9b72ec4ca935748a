// Package export serializes report data for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"ledgerdesk/internal/services"
)

// WriteReportCSV streams a report as CSV. Each transaction becomes one
// row; a per-category subtotal row follows each group and a grand
// total row closes the file.
func WriteReportCSV(w io.Writer, report *services.Report) error {
	cw := csv.NewWriter(w)

	header := []string{"Category", "Date", "Description", "Method", "Storage", "Amount"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	for _, category := range report.Categories {
		for _, tx := range category.Transactions {
			record := []string{
				category.CategoryName,
				tx.Date.Format("02-Jan-06"),
				tx.Description,
				tx.Method.Name,
				tx.Storage.Name,
				fmt.Sprintf("%.2f", tx.Amount),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("export: write row: %w", err)
			}
		}
		subtotal := []string{category.CategoryName + " total", "", "", "", "", fmt.Sprintf("%.2f", category.Total)}
		if err := cw.Write(subtotal); err != nil {
			return fmt.Errorf("export: write subtotal: %w", err)
		}
	}

	total := []string{"Grand total", "", "", "", "", fmt.Sprintf("%.2f", report.GrandTotal)}
	if err := cw.Write(total); err != nil {
		return fmt.Errorf("export: write total: %w", err)
	}

	cw.Flush()
	return cw.Error()
}
