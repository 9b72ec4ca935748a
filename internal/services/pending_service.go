package services

import (
	"errors"
	"io"
	"time"

	"gorm.io/gorm"

	"ledgerdesk/internal/csvimport"
	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/logger"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
)

// pendingService manages imported draft transactions between CSV
// upload and their promotion into real ledger transactions.
type pendingService struct {
	db                 *gorm.DB
	transactionService TransactionServicer
}

// NewPendingService creates a new PendingServicer.
func NewPendingService(db *gorm.DB, transactionService TransactionServicer) PendingServicer {
	return &pendingService{db: db, transactionService: transactionService}
}

// ImportCSV parses an uploaded ledger file and persists the surviving
// rows as pending transactions for the company.
func (s *pendingService) ImportCSV(companyID uint, fileName string, r io.Reader) ([]models.PendingTransaction, error) {
	rows, err := csvimport.ParseLedger(r)
	if err != nil {
		return nil, err
	}

	pending := make([]models.PendingTransaction, 0, len(rows))
	for _, row := range rows {
		pending = append(pending, models.PendingTransaction{
			CompanyID:   companyID,
			RawDate:     row.RawDate,
			Description: row.Description,
			Amount:      row.Amount,
			Type:        row.Type,
			SourceFile:  fileName,
		})
	}

	if err := s.db.Create(&pending).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("imported pending transactions",
		"company_id", companyID,
		"source_file", fileName,
		"rows", len(pending),
	)
	return pending, nil
}

// GetCompanyPending retrieves a paginated list of pending transactions.
func (s *pendingService) GetCompanyPending(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.PendingTransaction], error) {
	page.Defaults()

	base := s.db.Model(&models.PendingTransaction{}).Where("company_id = ?", companyID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var pending []models.PendingTransaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("id").
		Find(&pending).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(pending, page.Page, page.Limit, totalItems)
	return &result, nil
}

// GetPendingByID retrieves a pending transaction by ID for a company.
func (s *pendingService) GetPendingByID(companyID, pendingID uint) (*models.PendingTransaction, error) {
	var pending models.PendingTransaction
	if err := s.db.Where("id = ? AND company_id = ?", pendingID, companyID).
		First(&pending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPendingNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &pending, nil
}

// UpdatePending assigns or corrects the ledger coordinates on a draft
// row without promoting it.
func (s *pendingService) UpdatePending(companyID, pendingID uint, input PromotePendingInput) (*models.PendingTransaction, error) {
	pending, err := s.GetPendingByID(companyID, pendingID)
	if err != nil {
		return nil, err
	}

	if input.Type != "" {
		if input.Type != models.TransactionTypeInflow && input.Type != models.TransactionTypeOutflow {
			return nil, apperrors.ErrInvalidTransactionType
		}
		pending.Type = input.Type
	}
	if input.CategoryID != 0 {
		pending.CategoryID = &input.CategoryID
	}
	if input.MethodID != 0 {
		pending.MethodID = &input.MethodID
	}
	if input.StorageID != 0 {
		pending.StorageID = &input.StorageID
	}

	if err := s.db.Save(pending).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return pending, nil
}

// DeletePending discards a draft row.
func (s *pendingService) DeletePending(companyID, pendingID uint) error {
	pending, err := s.GetPendingByID(companyID, pendingID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(pending).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Promote turns a draft row into a real transaction and removes the
// draft. Rows whose type is still empty are rejected; the user must
// classify them first. Input values override whatever the draft holds.
func (s *pendingService) Promote(companyID, userID, pendingID uint, input PromotePendingInput) (*models.Transaction, error) {
	pending, err := s.GetPendingByID(companyID, pendingID)
	if err != nil {
		return nil, err
	}

	transactionType := pending.Type
	if input.Type != "" {
		transactionType = input.Type
	}
	if transactionType != models.TransactionTypeInflow && transactionType != models.TransactionTypeOutflow {
		return nil, apperrors.ErrInvalidTransactionType
	}

	categoryID := input.CategoryID
	if categoryID == 0 && pending.CategoryID != nil {
		categoryID = *pending.CategoryID
	}
	methodID := input.MethodID
	if methodID == 0 && pending.MethodID != nil {
		methodID = *pending.MethodID
	}
	storageID := input.StorageID
	if storageID == 0 && pending.StorageID != nil {
		storageID = *pending.StorageID
	}

	date := time.Now()
	if parsed, err := time.Parse("02-Jan-06", pending.RawDate); err == nil {
		date = parsed
	}

	transaction, err := s.transactionService.CreateTransaction(companyID, userID, CreateTransactionInput{
		Date:        date,
		Type:        transactionType,
		Amount:      pending.Amount,
		CategoryID:  categoryID,
		MethodID:    methodID,
		StorageID:   storageID,
		Description: pending.Description,
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Delete(pending).Error; err != nil {
		// The transaction exists; only the draft cleanup failed.
		logger.Get().Errorw("failed to delete promoted pending transaction",
			"pending_id", pending.ID,
			"transaction_id", transaction.ID,
			"error", err,
		)
	}
	return transaction, nil
}
