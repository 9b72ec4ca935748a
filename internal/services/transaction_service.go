package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db              *gorm.DB
	categoryService CategoryServicer
	methodService   MethodServicer
	storageService  StorageServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, categoryService CategoryServicer, methodService MethodServicer, storageService StorageServicer) TransactionServicer {
	return &transactionService{
		db:              db,
		categoryService: categoryService,
		methodService:   methodService,
		storageService:  storageService,
	}
}

// validateInput checks the ledger coordinates of a transaction: the
// category, method, and storage must exist in the company, and the
// category's type must match the transaction's type.
func (s *transactionService) validateInput(companyID uint, input CreateTransactionInput) error {
	if input.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.Type != models.TransactionTypeInflow && input.Type != models.TransactionTypeOutflow {
		return apperrors.ErrInvalidTransactionType
	}

	category, err := s.categoryService.GetCategoryByID(companyID, input.CategoryID)
	if err != nil {
		return err
	}
	if category.Type != input.Type {
		return apperrors.ErrCategoryTypeMismatch
	}

	if _, err := s.methodService.GetMethodByID(companyID, input.MethodID); err != nil {
		return err
	}
	if _, err := s.storageService.GetStorageByID(companyID, input.StorageID); err != nil {
		return err
	}
	return nil
}

// CreateTransaction creates a new transaction and applies it to the
// storage balance.
func (s *transactionService) CreateTransaction(companyID, userID uint, input CreateTransactionInput) (*models.Transaction, error) {
	if err := s.validateInput(companyID, input); err != nil {
		return nil, err
	}

	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	transaction := &models.Transaction{
		CompanyID:     companyID,
		UserID:        userID,
		Date:          input.Date,
		Type:          input.Type,
		Amount:        input.Amount,
		CategoryID:    input.CategoryID,
		MethodID:      input.MethodID,
		StorageID:     input.StorageID,
		InvoiceNumber: input.InvoiceNumber,
		InvoiceDate:   input.InvoiceDate,
		Details:       input.Details,
		Description:   input.Description,
	}

	// Concurrent creates in one company can race to the same tcid; the
	// unique index rejects the loser, so recompute the sequence and
	// retry before giving up.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(transaction).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return s.storageService.ApplyAmount(tx, transaction.StorageID, transaction.Type, transaction.Amount)
		})
		if err == nil {
			return transaction, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		transaction.ID = 0
		transaction.TCID = 0
	}
	return nil, err
}

// GetCompanyTransactions retrieves a paginated, filtered list of live
// (non-archived) transactions. An audit scope, when present, limits
// results to its storage and method id sets.
func (s *transactionService) GetCompanyTransactions(companyID uint, page pagination.PageRequest, filter TransactionFilter, scope *models.AuditScope) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).
		Where("company_id = ? AND is_deleted = ?", companyID, false)
	base = applyTransactionFilters(base, filter)
	base = applyAuditScope(base, scope)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Category").Preload("Method").Preload("Storage").
		Order("date DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.Limit, totalItems)
	return &result, nil
}

// GetArchivedTransactions lists transactions whose archive flag is set.
func (s *transactionService) GetArchivedTransactions(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).
		Where("company_id = ? AND is_deleted = ?", companyID, true)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Category").Preload("Method").Preload("Storage").
		Order("date DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.Limit, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.MethodID != nil {
		q = q.Where("method_id = ?", *f.MethodID)
	}
	if f.StorageID != nil {
		q = q.Where("storage_id = ?", *f.StorageID)
	}
	return q
}

// applyAuditScope narrows a transaction query to the storages and
// methods an audit-role user may see. An empty id set means no
// restriction on that axis.
func applyAuditScope(q *gorm.DB, scope *models.AuditScope) *gorm.DB {
	if scope == nil {
		return q
	}
	if ids := scope.Storages(); len(ids) > 0 {
		q = q.Where("storage_id IN ?", ids)
	}
	if ids := scope.Methods(); len(ids) > 0 {
		q = q.Where("method_id IN ?", ids)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific company
func (s *transactionService) GetTransactionByID(companyID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND company_id = ?", transactionID, companyID).
		Preload("Category").Preload("Method").Preload("Storage").
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction rewrites a transaction's fields, reversing the old
// amount on the old storage and applying the new one.
func (s *transactionService) UpdateTransaction(companyID, transactionID uint, input CreateTransactionInput) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(companyID, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.IsDeleted {
		return nil, apperrors.ErrTransactionArchived
	}
	if err := s.validateInput(companyID, input); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		input.Date = transaction.Date
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Reverse the previous effect, then apply the new one.
		if err := s.storageService.ApplyAmount(tx, transaction.StorageID, transaction.Type, -transaction.Amount); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"date":           input.Date,
			"type":           input.Type,
			"amount":         input.Amount,
			"category_id":    input.CategoryID,
			"method_id":      input.MethodID,
			"storage_id":     input.StorageID,
			"invoice_number": input.InvoiceNumber,
			"invoice_date":   input.InvoiceDate,
			"details":        input.Details,
			"description":    input.Description,
		}
		if err := tx.Model(transaction).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return s.storageService.ApplyAmount(tx, input.StorageID, input.Type, input.Amount)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTransactionByID(companyID, transactionID)
}

// ArchiveTransaction sets the reversible archive flag and reverses the
// transaction's effect on the storage balance.
func (s *transactionService) ArchiveTransaction(companyID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(companyID, transactionID)
	if err != nil {
		return err
	}
	if transaction.IsDeleted {
		return apperrors.ErrTransactionArchived
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(transaction).Update("is_deleted", true).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.storageService.ApplyAmount(tx, transaction.StorageID, transaction.Type, -transaction.Amount)
	})
}

// RestoreTransaction clears the archive flag and re-applies the amount.
func (s *transactionService) RestoreTransaction(companyID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(companyID, transactionID)
	if err != nil {
		return err
	}
	if !transaction.IsDeleted {
		return apperrors.ErrTransactionNotArchived
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(transaction).Update("is_deleted", false).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.storageService.ApplyAmount(tx, transaction.StorageID, transaction.Type, transaction.Amount)
	})
}
