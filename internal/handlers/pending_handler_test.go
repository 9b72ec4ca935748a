package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
	"ledgerdesk/internal/services"
)

// --- mock pending service ---

type mockPendingService struct {
	importCSVFn         func(companyID uint, fileName string, r io.Reader) ([]models.PendingTransaction, error)
	getCompanyPendingFn func(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.PendingTransaction], error)
	getPendingByIDFn    func(companyID, pendingID uint) (*models.PendingTransaction, error)
	updatePendingFn     func(companyID, pendingID uint, input services.PromotePendingInput) (*models.PendingTransaction, error)
	deletePendingFn     func(companyID, pendingID uint) error
	promoteFn           func(companyID, userID, pendingID uint, input services.PromotePendingInput) (*models.Transaction, error)
}

func (m *mockPendingService) ImportCSV(companyID uint, fileName string, r io.Reader) ([]models.PendingTransaction, error) {
	if m.importCSVFn != nil {
		return m.importCSVFn(companyID, fileName, r)
	}
	return []models.PendingTransaction{}, nil
}

func (m *mockPendingService) GetCompanyPending(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.PendingTransaction], error) {
	if m.getCompanyPendingFn != nil {
		return m.getCompanyPendingFn(companyID, page)
	}
	resp := pagination.NewPageResponse([]models.PendingTransaction{}, 1, 10, 0)
	return &resp, nil
}

func (m *mockPendingService) GetPendingByID(companyID, pendingID uint) (*models.PendingTransaction, error) {
	if m.getPendingByIDFn != nil {
		return m.getPendingByIDFn(companyID, pendingID)
	}
	return &models.PendingTransaction{}, nil
}

func (m *mockPendingService) UpdatePending(companyID, pendingID uint, input services.PromotePendingInput) (*models.PendingTransaction, error) {
	if m.updatePendingFn != nil {
		return m.updatePendingFn(companyID, pendingID, input)
	}
	return &models.PendingTransaction{}, nil
}

func (m *mockPendingService) DeletePending(companyID, pendingID uint) error {
	if m.deletePendingFn != nil {
		return m.deletePendingFn(companyID, pendingID)
	}
	return nil
}

func (m *mockPendingService) Promote(companyID, userID, pendingID uint, input services.PromotePendingInput) (*models.Transaction, error) {
	if m.promoteFn != nil {
		return m.promoteFn(companyID, userID, pendingID, input)
	}
	return &models.Transaction{}, nil
}

var _ services.PendingServicer = (*mockPendingService)(nil)

func setupPendingRouter(handler *PendingHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1), injectCompanyID(1))
	auth.POST("/pending-transactions/import", handler.ImportCSV)
	auth.GET("/pending-transactions", handler.GetPending)
	auth.PATCH("/pending-transactions/:id", handler.UpdatePending)
	auth.DELETE("/pending-transactions/:id", handler.DeletePending)
	auth.POST("/pending-transactions/:id/promote", handler.Promote)
	return r
}

// doUpload posts a multipart form with one file field.
func doUpload(t *testing.T, r *gin.Engine, path, fileName, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPendingHandler_ImportCSV(t *testing.T) {
	csvContent := "Date,Description,Paid Out,Paid In\n01-Jan-24,Opening sale,,100.00\n"

	t.Run("returns 201 with imported rows", func(t *testing.T) {
		var gotFileName string
		pendingSvc := &mockPendingService{
			importCSVFn: func(companyID uint, fileName string, r io.Reader) ([]models.PendingTransaction, error) {
				gotFileName = fileName
				body, _ := io.ReadAll(r)
				if !strings.Contains(string(body), "Opening sale") {
					t.Errorf("expected uploaded CSV content, got %q", string(body))
				}
				return []models.PendingTransaction{
					{Base: models.Base{ID: 1}, CompanyID: companyID, RawDate: "01-Jan-24", Amount: 100, Type: models.TransactionTypeInflow},
				}, nil
			},
		}
		handler := NewPendingHandler(pendingSvc, &mockAuditService{})
		r := setupPendingRouter(handler)

		rec := doUpload(t, r, "/pending-transactions/import", "ledger.csv", csvContent)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFileName != "ledger.csv" {
			t.Errorf("expected file name ledger.csv, got %q", gotFileName)
		}
		result := parseJSON(t, rec)
		rows := result["data"].([]interface{})
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		row := rows[0].(map[string]interface{})
		if row["amount"].(float64) != 100 {
			t.Errorf("expected amount 100, got %v", row["amount"])
		}
	})

	t.Run("returns 400 without a file", func(t *testing.T) {
		handler := NewPendingHandler(&mockPendingService{}, &mockAuditService{})
		r := setupPendingRouter(handler)

		rec := doRequest(r, "POST", "/pending-transactions/import", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on oversized file", func(t *testing.T) {
		handler := NewPendingHandler(&mockPendingService{}, &mockAuditService{})
		r := setupPendingRouter(handler)

		big := strings.Repeat("a", maxImportSize+1)
		rec := doUpload(t, r, "/pending-transactions/import", "huge.csv", big)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 when no rows survive", func(t *testing.T) {
		pendingSvc := &mockPendingService{
			importCSVFn: func(_ uint, _ string, _ io.Reader) ([]models.PendingTransaction, error) {
				return nil, apperrors.ErrEmptyImport
			},
		}
		handler := NewPendingHandler(pendingSvc, &mockAuditService{})
		r := setupPendingRouter(handler)

		rec := doUpload(t, r, "/pending-transactions/import", "empty.csv", "Date,Description,Paid Out,Paid In\n")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EMPTY_IMPORT")
	})
}

func TestPendingHandler_UpdatePending(t *testing.T) {
	t.Run("returns 200 with updated row", func(t *testing.T) {
		pendingSvc := &mockPendingService{
			updatePendingFn: func(_, pendingID uint, input services.PromotePendingInput) (*models.PendingTransaction, error) {
				return &models.PendingTransaction{
					Base:       models.Base{ID: pendingID},
					Type:       input.Type,
					CategoryID: &input.CategoryID,
				}, nil
			},
		}
		handler := NewPendingHandler(pendingSvc, &mockAuditService{})
		r := setupPendingRouter(handler)

		rec := doRequest(r, "PATCH", "/pending-transactions/3",
			`{"transaction_type":"outflow","category_id":2,"method_id":1,"storage_id":1}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		row := parseData(t, rec)
		if row["transaction_type"] != "outflow" {
			t.Errorf("expected outflow, got %v", row["transaction_type"])
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		handler := NewPendingHandler(&mockPendingService{}, &mockAuditService{})
		r := setupPendingRouter(handler)

		rec := doRequest(r, "PATCH", "/pending-transactions/3", `{"transaction_type":"sideways"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		pendingSvc := &mockPendingService{
			updatePendingFn: func(_, _ uint, _ services.PromotePendingInput) (*models.PendingTransaction, error) {
				return nil, apperrors.ErrPendingNotFound
			},
		}
		handler := NewPendingHandler(pendingSvc, &mockAuditService{})
		r := setupPendingRouter(handler)

		rec := doRequest(r, "PATCH", "/pending-transactions/99", `{"category_id":1}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PENDING_NOT_FOUND")
	})
}

func TestPendingHandler_Promote(t *testing.T) {
	t.Run("returns 201 with created transaction", func(t *testing.T) {
		pendingSvc := &mockPendingService{
			promoteFn: func(_, _, pendingID uint, input services.PromotePendingInput) (*models.Transaction, error) {
				return &models.Transaction{
					Base:       models.Base{ID: 20},
					Type:       models.TransactionTypeInflow,
					Amount:     100,
					CategoryID: input.CategoryID,
				}, nil
			},
		}
		handler := NewPendingHandler(pendingSvc, &mockAuditService{})
		r := setupPendingRouter(handler)

		rec := doRequest(r, "POST", "/pending-transactions/3/promote",
			`{"category_id":1,"method_id":1,"storage_id":1}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		tx := parseData(t, rec)
		if tx["transaction_amount"].(float64) != 100 {
			t.Errorf("expected amount 100, got %v", tx["transaction_amount"])
		}
	})

	t.Run("returns 400 when draft type is unresolved", func(t *testing.T) {
		pendingSvc := &mockPendingService{
			promoteFn: func(_, _, _ uint, _ services.PromotePendingInput) (*models.Transaction, error) {
				return nil, apperrors.ErrInvalidTransactionType
			},
		}
		handler := NewPendingHandler(pendingSvc, &mockAuditService{})
		r := setupPendingRouter(handler)

		rec := doRequest(r, "POST", "/pending-transactions/3/promote",
			`{"category_id":1,"method_id":1,"storage_id":1}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_TRANSACTION_TYPE")
	})
}

func TestPendingHandler_DeletePending(t *testing.T) {
	t.Run("returns 200 with message", func(t *testing.T) {
		var deletedID uint
		pendingSvc := &mockPendingService{
			deletePendingFn: func(_, pendingID uint) error {
				deletedID = pendingID
				return nil
			},
		}
		handler := NewPendingHandler(pendingSvc, &mockAuditService{})
		r := setupPendingRouter(handler)

		rec := doRequest(r, "DELETE", "/pending-transactions/7", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if deletedID != 7 {
			t.Errorf("expected row 7 deleted, got %d", deletedID)
		}
	})
}
