package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
)

// companyService handles company-related business logic.
type companyService struct {
	db *gorm.DB
}

// NewCompanyService creates a new CompanyServicer.
func NewCompanyService(db *gorm.DB) CompanyServicer {
	return &companyService{db: db}
}

// CreateCompany creates a new company owned by the given user.
func (s *companyService) CreateCompany(ownerID uint, name, address, currencySymbol string) (*models.Company, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "company name is required")
	}
	if currencySymbol == "" {
		currencySymbol = "£"
	}

	company := &models.Company{
		Name:           name,
		Address:        address,
		CurrencySymbol: currencySymbol,
		OwnerID:        ownerID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(company).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// The owner joins their own company as manager.
		if err := tx.Model(&models.User{}).Where("id = ?", ownerID).
			Updates(map[string]interface{}{"company_id": company.ID, "role": models.RoleManager}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

// GetCompanyByID retrieves a company by ID.
func (s *companyService) GetCompanyByID(companyID uint) (*models.Company, error) {
	var company models.Company
	if err := s.db.First(&company, companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &company, nil
}

// GetUserCompanies retrieves a paginated list of companies owned by a user.
func (s *companyService) GetUserCompanies(ownerID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Company], error) {
	page.Defaults()

	base := s.db.Model(&models.Company{}).Where("owner_id = ?", ownerID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var companies []models.Company
	if err := base.Scopes(pagination.Paginate(page)).Order("id").Find(&companies).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(companies, page.Page, page.Limit, totalItems)
	return &result, nil
}

// UpdateCompany updates a company's profile fields.
func (s *companyService) UpdateCompany(companyID uint, name, address, currencySymbol string) (*models.Company, error) {
	company, err := s.GetCompanyByID(companyID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if address != "" {
		updates["address"] = address
	}
	if currencySymbol != "" {
		updates["currency_symbol"] = currencySymbol
	}

	if len(updates) > 0 {
		if err := s.db.Model(company).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return company, nil
}

// DeleteCompany soft-deletes a company.
func (s *companyService) DeleteCompany(companyID uint) error {
	company, err := s.GetCompanyByID(companyID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(company).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
