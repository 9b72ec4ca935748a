package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
)

// CategoryReport groups one category's transactions with per-method
// subtotals and an overall total.
type CategoryReport struct {
	CategoryName string               `json:"category_name"`
	Transactions []models.Transaction `json:"transactions"`
	MethodTotals map[string]float64   `json:"method_totals"`
	Total        float64              `json:"total"`
}

// Report is the full per-type report for a company and date range.
type Report struct {
	CompanyID   uint                   `json:"company_id"`
	Type        models.TransactionType `json:"transaction_type"`
	From        time.Time              `json:"from"`
	To          time.Time              `json:"to"`
	MethodNames []string               `json:"method_names"`
	Categories  []CategoryReport       `json:"categories"`
	Storages    []models.Storage       `json:"storages"`
	GrandTotal  float64                `json:"grand_total"`
}

// ReportFilter narrows an already-built report to specific ledger
// coordinates. Zero values mean no restriction on that axis.
type ReportFilter struct {
	CategoryID uint
	MethodID   uint
	StorageID  uint
}

// reportService assembles company reports from the ledger.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// Aggregate groups transactions by category name, accumulating totals
// per known payment method. Categories are keyed by NAME, so two
// categories sharing a name merge into one bucket. A transaction whose
// method is not in methodNames contributes to the category total and
// the grand total but to no method bucket, so method subtotals may sum
// to less than the category total.
func Aggregate(transactions []models.Transaction, methodNames []string) []CategoryReport {
	known := make(map[string]bool, len(methodNames))
	for _, name := range methodNames {
		known[name] = true
	}

	byName := make(map[string]*CategoryReport)
	var order []string

	for _, tx := range transactions {
		name := tx.Category.Name
		report, ok := byName[name]
		if !ok {
			report = &CategoryReport{
				CategoryName: name,
				MethodTotals: make(map[string]float64, len(methodNames)),
			}
			byName[name] = report
			order = append(order, name)
		}

		report.Transactions = append(report.Transactions, tx)
		report.Total += tx.Amount
		if known[tx.Method.Name] {
			report.MethodTotals[tx.Method.Name] += tx.Amount
		}
	}

	result := make([]CategoryReport, 0, len(order))
	for _, name := range order {
		result = append(result, *byName[name])
	}
	return result
}

// FilterData re-filters each category's transaction list by the given
// coordinates and recomputes every sum from scratch. Categories left
// with no transactions are dropped.
func FilterData(categories []CategoryReport, methodNames []string, filter ReportFilter) []CategoryReport {
	var filtered []CategoryReport
	for _, category := range categories {
		var kept []models.Transaction
		for _, tx := range category.Transactions {
			if filter.CategoryID != 0 && tx.CategoryID != filter.CategoryID {
				continue
			}
			if filter.MethodID != 0 && tx.MethodID != filter.MethodID {
				continue
			}
			if filter.StorageID != 0 && tx.StorageID != filter.StorageID {
				continue
			}
			kept = append(kept, tx)
		}
		if len(kept) == 0 {
			continue
		}
		rebuilt := Aggregate(kept, methodNames)
		filtered = append(filtered, rebuilt...)
	}
	return filtered
}

// BuildReport loads the methods, storages and transactions for the
// range concurrently, then aggregates per category. An audit scope, if
// present, restricts both the transaction set and the reference lists.
func (s *reportService) BuildReport(ctx context.Context, companyID uint, transactionType models.TransactionType, from, to time.Time, scope *models.AuditScope) (*Report, error) {
	if transactionType != models.TransactionTypeInflow && transactionType != models.TransactionTypeOutflow {
		return nil, apperrors.ErrInvalidTransactionType
	}

	var (
		methods      []models.Method
		storages     []models.Storage
		transactions []models.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q := s.db.WithContext(gctx).Where("company_id = ? AND is_active = ?", companyID, true)
		if scope != nil {
			if ids := scope.Methods(); len(ids) > 0 {
				q = q.Where("id IN ?", ids)
			}
		}
		if err := q.Order("id").Find(&methods).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})

	g.Go(func() error {
		q := s.db.WithContext(gctx).Where("company_id = ? AND is_active = ?", companyID, true)
		if scope != nil {
			if ids := scope.Storages(); len(ids) > 0 {
				q = q.Where("id IN ?", ids)
			}
		}
		if err := q.Order("id").Find(&storages).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})

	g.Go(func() error {
		q := s.db.WithContext(gctx).
			Where("company_id = ? AND type = ? AND is_deleted = ?", companyID, transactionType, false).
			Where("date >= ? AND date <= ?", from, to)
		if scope != nil {
			if ids := scope.Storages(); len(ids) > 0 {
				q = q.Where("storage_id IN ?", ids)
			}
			if ids := scope.Methods(); len(ids) > 0 {
				q = q.Where("method_id IN ?", ids)
			}
		}
		if err := q.Preload("Category").Preload("Method").Preload("Storage").
			Order("date, id").
			Find(&transactions).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	methodNames := make([]string, 0, len(methods))
	for _, m := range methods {
		methodNames = append(methodNames, m.Name)
	}

	categories := Aggregate(transactions, methodNames)

	var grandTotal float64
	for _, c := range categories {
		grandTotal += c.Total
	}

	return &Report{
		CompanyID:   companyID,
		Type:        transactionType,
		From:        from,
		To:          to,
		MethodNames: methodNames,
		Categories:  categories,
		Storages:    storages,
		GrandTotal:  grandTotal,
	}, nil
}
