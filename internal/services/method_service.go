package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
)

// methodService handles payment-method business logic.
type methodService struct {
	db *gorm.DB
}

// NewMethodService creates a new MethodServicer.
func NewMethodService(db *gorm.DB) MethodServicer {
	return &methodService{db: db}
}

// CreateMethod creates a new payment method.
func (s *methodService) CreateMethod(companyID uint, name string) (*models.Method, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "method name is required")
	}

	var count int64
	if err := s.db.Model(&models.Method{}).
		Where("company_id = ? AND name = ?", companyID, name).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "method with this name already exists")
	}

	method := &models.Method{CompanyID: companyID, Name: name, IsActive: true}
	if err := s.db.Create(method).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return method, nil
}

// GetCompanyMethods retrieves a paginated list of methods for a company.
func (s *methodService) GetCompanyMethods(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Method], error) {
	page.Defaults()

	base := s.db.Model(&models.Method{}).Where("company_id = ?", companyID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var methods []models.Method
	if err := base.Scopes(pagination.Paginate(page)).Order("id").Find(&methods).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(methods, page.Page, page.Limit, totalItems)
	return &result, nil
}

// GetMethodByID retrieves a method by ID for a specific company.
func (s *methodService) GetMethodByID(companyID, methodID uint) (*models.Method, error) {
	var method models.Method
	if err := s.db.Where("id = ? AND company_id = ?", methodID, companyID).First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMethodNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &method, nil
}

// UpdateMethod updates a method's name and active flag.
func (s *methodService) UpdateMethod(companyID, methodID uint, name string, isActive *bool) (*models.Method, error) {
	method, err := s.GetMethodByID(companyID, methodID)
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
		if err := s.db.Model(method).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return method, nil
}

// DeleteMethod soft-deletes a method.
func (s *methodService) DeleteMethod(companyID, methodID uint) error {
	method, err := s.GetMethodByID(companyID, methodID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(method).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
