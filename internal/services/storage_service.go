package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
)

// storageService handles storage (bank/cash bucket) business logic.
type storageService struct {
	db *gorm.DB
}

// NewStorageService creates a new StorageServicer.
func NewStorageService(db *gorm.DB) StorageServicer {
	return &storageService{db: db}
}

// CreateStorage creates a new storage with its opening balance.
func (s *storageService) CreateStorage(companyID uint, name string, openingBalance float64) (*models.Storage, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "storage name is required")
	}

	storage := &models.Storage{
		CompanyID:      companyID,
		Name:           name,
		OpeningBalance: openingBalance,
		Balance:        openingBalance,
		IsActive:       true,
	}

	if err := s.db.Create(storage).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return storage, nil
}

// GetCompanyStorages retrieves a paginated list of storages for a company.
func (s *storageService) GetCompanyStorages(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Storage], error) {
	page.Defaults()

	base := s.db.Model(&models.Storage{}).Where("company_id = ?", companyID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var storages []models.Storage
	if err := base.Scopes(pagination.Paginate(page)).Order("id").Find(&storages).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(storages, page.Page, page.Limit, totalItems)
	return &result, nil
}

// GetStorageByID retrieves a storage by ID for a specific company.
func (s *storageService) GetStorageByID(companyID, storageID uint) (*models.Storage, error) {
	var storage models.Storage
	if err := s.db.Where("id = ? AND company_id = ?", storageID, companyID).First(&storage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStorageNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &storage, nil
}

// UpdateStorage updates a storage's name and active flag. The opening
// balance is immutable once set; corrections go through transactions.
func (s *storageService) UpdateStorage(companyID, storageID uint, name string, isActive *bool) (*models.Storage, error) {
	storage, err := s.GetStorageByID(companyID, storageID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(storage).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return storage, nil
}

// DeleteStorage soft-deletes a storage.
func (s *storageService) DeleteStorage(companyID, storageID uint) error {
	storage, err := s.GetStorageByID(companyID, storageID)
	if err != nil {
		return err
	}

	var txCount int64
	if err := s.db.Model(&models.Transaction{}).
		Where("storage_id = ? AND is_deleted = ?", storageID, false).
		Count(&txCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if txCount > 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "storage has active transactions")
	}

	if err := s.db.Delete(storage).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ApplyAmount adjusts the running balance: inflow adds, outflow
// subtracts. Callers reverse a previous application by negating amount.
func (s *storageService) ApplyAmount(tx *gorm.DB, storageID uint, transactionType models.TransactionType, amount float64) error {
	delta := amount
	if transactionType == models.TransactionTypeOutflow {
		delta = -amount
	}

	if err := tx.Model(&models.Storage{}).
		Where("id = ?", storageID).
		Update("balance", gorm.Expr("balance + ?", delta)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
