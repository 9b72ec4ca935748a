// Package csvimport parses uploaded bank-ledger CSV files into draft
// transaction rows that still need category, method and storage
// assignment before they become real transactions.
package csvimport

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
)

// ledgerDateLayout is the date format banks in scope export, e.g.
// "02-Jan-06" for 2 January 2006.
const ledgerDateLayout = "02-Jan-06"

// Row is one parsed ledger line before persistence.
type Row struct {
	// RawDate keeps the original cell text. Unparseable dates are
	// carried through as-is instead of failing the row; the user
	// corrects them during review.
	RawDate     string
	Date        *time.Time
	Description string
	Amount      float64
	// Type is empty when the row could not be classified, which
	// blocks promotion until the user picks a direction.
	Type models.TransactionType
}

// columnIndex maps the header names we care about to their positions.
type columnIndex struct {
	date        int
	description int
	paidOut     int
	paidIn      int
}

func indexHeader(header []string) columnIndex {
	idx := columnIndex{date: -1, description: -1, paidOut: -1, paidIn: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			idx.date = i
		case "description":
			idx.description = i
		case "paid out":
			idx.paidOut = i
		case "paid in":
			idx.paidIn = i
		}
	}
	return idx
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseAmount(raw string) float64 {
	if raw == "" {
		return 0
	}
	cleaned := strings.ReplaceAll(raw, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "£")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseLedger reads a ledger CSV and returns the surviving draft rows.
//
// Rows without a Date cell, or with neither a Paid In nor a Paid Out
// cell, are dropped. A row whose amounts are both present but zero
// survives with an empty Type so the user must classify it manually.
func ParseLedger(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.ErrEmptyImport
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}

	idx := indexHeader(header)
	if idx.date < 0 || (idx.paidIn < 0 && idx.paidOut < 0) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "missing Date or amount columns in header")
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err)
		}

		rawDate := cell(record, idx.date)
		rawOut := cell(record, idx.paidOut)
		rawIn := cell(record, idx.paidIn)

		if rawDate == "" {
			continue
		}
		if rawOut == "" && rawIn == "" {
			continue
		}

		row := Row{
			RawDate:     rawDate,
			Description: cell(record, idx.description),
		}
		if parsed, err := time.Parse(ledgerDateLayout, rawDate); err == nil {
			row.Date = &parsed
		}

		paidIn := parseAmount(rawIn)
		paidOut := parseAmount(rawOut)
		switch {
		case paidIn > 0:
			row.Type = models.TransactionTypeInflow
			row.Amount = paidIn
		case paidOut > 0:
			row.Type = models.TransactionTypeOutflow
			row.Amount = paidOut
		default:
			// Neither side is positive. Keep the row but leave it
			// unclassified; promotion rejects it until corrected.
			row.Type = ""
			row.Amount = 0
		}

		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, apperrors.ErrEmptyImport
	}
	return rows, nil
}
