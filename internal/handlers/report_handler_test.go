package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/services"
)

// --- mock report service ---

type mockReportService struct {
	buildReportFn func(ctx context.Context, companyID uint, transactionType models.TransactionType, from, to time.Time, scope *models.AuditScope) (*services.Report, error)
}

func (m *mockReportService) BuildReport(ctx context.Context, companyID uint, transactionType models.TransactionType, from, to time.Time, scope *models.AuditScope) (*services.Report, error) {
	if m.buildReportFn != nil {
		return m.buildReportFn(ctx, companyID, transactionType, from, to, scope)
	}
	return &services.Report{CompanyID: companyID, Type: transactionType, From: from, To: to}, nil
}

var _ services.ReportServicer = (*mockReportService)(nil)

func setupReportRouter(handler *ReportHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1), injectCompanyID(1))
	auth.GET("/reports", handler.GetReport)
	auth.GET("/reports/csv", handler.GetReportCSV)
	return r
}

func sampleReport(companyID uint) *services.Report {
	return &services.Report{
		CompanyID:   companyID,
		Type:        models.TransactionTypeInflow,
		From:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:          time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		MethodNames: []string{"Card", "Cash"},
		Categories: []services.CategoryReport{
			{
				CategoryName: "Sales",
				MethodTotals: map[string]float64{"Card": 100, "Cash": 50},
				Total:        150,
			},
		},
		GrandTotal: 150,
	}
}

func TestReportHandler_GetReport(t *testing.T) {
	t.Run("returns 200 with report", func(t *testing.T) {
		reportSvc := &mockReportService{
			buildReportFn: func(_ context.Context, companyID uint, _ models.TransactionType, _, _ time.Time, _ *models.AuditScope) (*services.Report, error) {
				return sampleReport(companyID), nil
			},
		}
		handler := NewReportHandler(reportSvc, &mockCompanyService{})
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports?transaction_type=inflow&from=2024-01-01&to=2024-01-31", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		report := parseData(t, rec)
		if report["grand_total"].(float64) != 150 {
			t.Errorf("expected grand total 150, got %v", report["grand_total"])
		}
		categories := report["categories"].([]interface{})
		if len(categories) != 1 {
			t.Fatalf("expected 1 category, got %d", len(categories))
		}
	})

	t.Run("makes the to date inclusive", func(t *testing.T) {
		var gotTo time.Time
		reportSvc := &mockReportService{
			buildReportFn: func(_ context.Context, companyID uint, _ models.TransactionType, _, to time.Time, _ *models.AuditScope) (*services.Report, error) {
				gotTo = to
				return sampleReport(companyID), nil
			},
		}
		handler := NewReportHandler(reportSvc, &mockCompanyService{})
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports?transaction_type=inflow&from=2024-01-01&to=2024-01-31", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotTo.Day() != 31 || gotTo.Hour() != 23 {
			t.Errorf("expected end of day on the 31st, got %v", gotTo)
		}
	})

	t.Run("re-filters by storage and recomputes totals", func(t *testing.T) {
		tx := func(category string, storageID uint, amount float64) models.Transaction {
			return models.Transaction{
				Type:      models.TransactionTypeInflow,
				Amount:    amount,
				StorageID: storageID,
				Category:  models.Category{Name: category},
				Method:    models.Method{Name: "Card"},
			}
		}
		reportSvc := &mockReportService{
			buildReportFn: func(_ context.Context, companyID uint, _ models.TransactionType, _, _ time.Time, _ *models.AuditScope) (*services.Report, error) {
				return &services.Report{
					CompanyID:   companyID,
					Type:        models.TransactionTypeInflow,
					MethodNames: []string{"Card"},
					Categories: []services.CategoryReport{
						{
							CategoryName: "Sales",
							Transactions: []models.Transaction{tx("Sales", 1, 100), tx("Sales", 2, 50)},
							MethodTotals: map[string]float64{"Card": 150},
							Total:        150,
						},
						{
							CategoryName: "Fees",
							Transactions: []models.Transaction{tx("Fees", 1, 25)},
							MethodTotals: map[string]float64{"Card": 25},
							Total:        25,
						},
					},
					GrandTotal: 175,
				}, nil
			},
		}
		handler := NewReportHandler(reportSvc, &mockCompanyService{})
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports?transaction_type=inflow&from=2024-01-01&to=2024-01-31&storage_id=2", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		report := parseData(t, rec)
		if report["grand_total"].(float64) != 50 {
			t.Errorf("expected grand total 50 after filtering, got %v", report["grand_total"])
		}
		categories := report["categories"].([]interface{})
		if len(categories) != 1 {
			t.Fatalf("expected 1 surviving category, got %d", len(categories))
		}
		category := categories[0].(map[string]interface{})
		if category["category_name"].(string) != "Sales" {
			t.Errorf("expected Sales to survive, got %v", category["category_name"])
		}
		if category["total"].(float64) != 50 {
			t.Errorf("expected recomputed total 50, got %v", category["total"])
		}
	})

	t.Run("returns 400 on a non-numeric filter id", func(t *testing.T) {
		handler := NewReportHandler(&mockReportService{}, &mockCompanyService{})
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports?transaction_type=inflow&from=2024-01-01&to=2024-01-31&storage_id=petty", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on missing dates", func(t *testing.T) {
		handler := NewReportHandler(&mockReportService{}, &mockCompanyService{})
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports?transaction_type=inflow", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 when service rejects the type", func(t *testing.T) {
		reportSvc := &mockReportService{
			buildReportFn: func(_ context.Context, _ uint, _ models.TransactionType, _, _ time.Time, _ *models.AuditScope) (*services.Report, error) {
				return nil, apperrors.ErrInvalidTransactionType
			},
		}
		handler := NewReportHandler(reportSvc, &mockCompanyService{})
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports?transaction_type=sideways&from=2024-01-01&to=2024-01-31", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_TRANSACTION_TYPE")
	})
}

func TestReportHandler_GetReportCSV(t *testing.T) {
	t.Run("streams CSV with attachment headers", func(t *testing.T) {
		reportSvc := &mockReportService{
			buildReportFn: func(_ context.Context, companyID uint, _ models.TransactionType, _, _ time.Time, _ *models.AuditScope) (*services.Report, error) {
				return sampleReport(companyID), nil
			},
		}
		handler := NewReportHandler(reportSvc, &mockCompanyService{})
		r := setupReportRouter(handler)

		rec := doRequest(r, "GET", "/reports/csv?transaction_type=inflow&from=2024-01-01&to=2024-01-31", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "report-inflow-2024-01-01.csv") {
			t.Errorf("unexpected Content-Disposition: %q", got)
		}
		body := rec.Body.String()
		if !strings.Contains(body, "Sales") {
			t.Errorf("expected category row in CSV, got: %q", body)
		}
	})
}
