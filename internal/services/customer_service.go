package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
)

// customerService handles customer-related business logic.
type customerService struct {
	db *gorm.DB
}

// NewCustomerService creates a new CustomerServicer.
func NewCustomerService(db *gorm.DB) CustomerServicer {
	return &customerService{db: db}
}

// CreateCustomer creates a new customer.
func (s *customerService) CreateCustomer(companyID uint, name, email, phone, address string) (*models.Customer, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "customer name is required")
	}

	customer := &models.Customer{
		CompanyID: companyID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		Address:   address,
	}
	if err := s.db.Create(customer).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return customer, nil
}

// GetCompanyCustomers retrieves a paginated list of customers for a company.
func (s *customerService) GetCompanyCustomers(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Customer], error) {
	page.Defaults()

	base := s.db.Model(&models.Customer{}).Where("company_id = ?", companyID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var customers []models.Customer
	if err := base.Scopes(pagination.Paginate(page)).Order("id").Find(&customers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(customers, page.Page, page.Limit, totalItems)
	return &result, nil
}

// GetCustomerByID retrieves a customer by ID for a specific company.
func (s *customerService) GetCustomerByID(companyID, customerID uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.Where("id = ? AND company_id = ?", customerID, companyID).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &customer, nil
}

// UpdateCustomer updates a customer's contact fields.
func (s *customerService) UpdateCustomer(companyID, customerID uint, name, email, phone, address string) (*models.Customer, error) {
	customer, err := s.GetCustomerByID(companyID, customerID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if email != "" {
		updates["email"] = email
	}
	if phone != "" {
		updates["phone"] = phone
	}
	if address != "" {
		updates["address"] = address
	}

	if len(updates) > 0 {
		if err := s.db.Model(customer).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return customer, nil
}

// DeleteCustomer soft-deletes a customer.
func (s *customerService) DeleteCustomer(companyID, customerID uint) error {
	customer, err := s.GetCustomerByID(companyID, customerID)
	if err != nil {
		return err
	}

	var invoiceCount int64
	if err := s.db.Model(&models.Invoice{}).
		Where("customer_id = ? AND status = ?", customerID, models.InvoiceStatusDue).
		Count(&invoiceCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if invoiceCount > 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "customer has due invoices")
	}

	if err := s.db.Delete(customer).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
