package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
)

// invoiceService handles invoice-related business logic.
type invoiceService struct {
	db                 *gorm.DB
	customerService    CustomerServicer
	transactionService TransactionServicer
}

// NewInvoiceService creates a new InvoiceServicer.
func NewInvoiceService(db *gorm.DB, customerService CustomerServicer, transactionService TransactionServicer) InvoiceServicer {
	return &invoiceService{
		db:                 db,
		customerService:    customerService,
		transactionService: transactionService,
	}
}

func buildItems(inputs []InvoiceItemInput) []models.InvoiceItem {
	items := make([]models.InvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, models.InvoiceItem{
			Details:  in.Details,
			Quantity: in.Quantity,
			Rate:     in.Rate,
			Amount:   in.Quantity * in.Rate,
		})
	}
	return items
}

// CreateInvoice creates a new invoice with its computed amount.
func (s *invoiceService) CreateInvoice(companyID uint, input CreateInvoiceInput) (*models.Invoice, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invoice needs at least one item")
	}
	if _, err := s.customerService.GetCustomerByID(companyID, input.CustomerID); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}
	if input.DiscountType == "" {
		input.DiscountType = models.DiscountTypeFlat
	}

	invoice := &models.Invoice{
		CompanyID:      companyID,
		CustomerID:     input.CustomerID,
		Date:           input.Date,
		Items:          buildItems(input.Items),
		Tax:            input.Tax,
		Discount:       input.Discount,
		DiscountType:   input.DiscountType,
		PartialPayment: input.PartialPayment,
		Status:         models.InvoiceStatusDue,
		Type:           input.Type,
		BankID:         input.BankID,
	}
	invoice.ComputeAmount()

	if err := s.db.Create(invoice).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return invoice, nil
}

// GetCompanyInvoices retrieves a paginated invoice list with optional
// status and customer filters.
func (s *invoiceService) GetCompanyInvoices(companyID uint, status *models.InvoiceStatus, customerID *uint, page pagination.PageRequest) (*pagination.PageResponse[models.Invoice], error) {
	page.Defaults()

	base := s.db.Model(&models.Invoice{}).Where("company_id = ?", companyID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}
	if customerID != nil {
		base = base.Where("customer_id = ?", *customerID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var invoices []models.Invoice
	if err := base.Scopes(pagination.Paginate(page)).
		Preload("Customer").Preload("Items").
		Order("date DESC, id DESC").
		Find(&invoices).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(invoices, page.Page, page.Limit, totalItems)
	return &result, nil
}

// GetInvoiceByID retrieves an invoice by ID for a specific company.
func (s *invoiceService) GetInvoiceByID(companyID, invoiceID uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.Where("id = ? AND company_id = ?", invoiceID, companyID).
		Preload("Customer").Preload("Items").Preload("Bank").
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &invoice, nil
}

// UpdateInvoice replaces an invoice's writable fields and items and
// recomputes its amount. Paid invoices are immutable.
func (s *invoiceService) UpdateInvoice(companyID, invoiceID uint, input CreateInvoiceInput) (*models.Invoice, error) {
	invoice, err := s.GetInvoiceByID(companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return nil, apperrors.ErrInvoiceAlreadyPaid
	}
	if len(input.Items) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invoice needs at least one item")
	}
	if _, err := s.customerService.GetCustomerByID(companyID, input.CustomerID); err != nil {
		return nil, err
	}
	if input.DiscountType == "" {
		input.DiscountType = invoice.DiscountType
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		invoice.CustomerID = input.CustomerID
		if !input.Date.IsZero() {
			invoice.Date = input.Date
		}
		invoice.Items = buildItems(input.Items)
		for i := range invoice.Items {
			invoice.Items[i].InvoiceID = invoice.ID
		}
		invoice.Tax = input.Tax
		invoice.Discount = input.Discount
		invoice.DiscountType = input.DiscountType
		invoice.PartialPayment = input.PartialPayment
		if input.Type != "" {
			invoice.Type = input.Type
		}
		invoice.BankID = input.BankID
		invoice.ComputeAmount()

		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(invoice).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// DeleteInvoice soft-deletes an invoice and its items.
func (s *invoiceService) DeleteInvoice(companyID, invoiceID uint) error {
	invoice, err := s.GetInvoiceByID(companyID, invoiceID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(invoice).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// MarkAsPaid records payment of an invoice: it creates a transaction
// for the invoice amount, then flips the invoice status to paid.
//
// The two writes are deliberately sequential and NOT wrapped in one
// database transaction. A failure of the status update leaves the
// created transaction in place; callers see the error and the invoice
// still reads as due, so the handler returns the transaction for
// reconciliation instead of silently dropping it.
func (s *invoiceService) MarkAsPaid(companyID, userID, invoiceID uint, input PayInvoiceInput) (*models.Transaction, *models.Invoice, error) {
	invoice, err := s.GetInvoiceByID(companyID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if invoice.Status == models.InvoiceStatusPaid {
		return nil, nil, apperrors.ErrInvoiceAlreadyPaid
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	// First write: the payment transaction.
	transaction, err := s.transactionService.CreateTransaction(companyID, userID, CreateTransactionInput{
		Date:          input.Date,
		Type:          invoice.Type,
		Amount:        invoice.Amount,
		CategoryID:    input.CategoryID,
		MethodID:      input.MethodID,
		StorageID:     input.StorageID,
		InvoiceNumber: invoice.InvID,
		InvoiceDate:   &invoice.Date,
		Description:   fmt.Sprintf("Payment of invoice %s", invoice.InvID),
	})
	if err != nil {
		return nil, nil, err
	}

	// Second write: the status flip.
	res := s.db.Model(&models.Invoice{}).
		Where("id = ? AND company_id = ? AND status = ?", invoiceID, companyID, models.InvoiceStatusDue).
		Update("status", models.InvoiceStatusPaid)
	if res.Error != nil {
		return transaction, nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return transaction, nil, apperrors.WithMessage(apperrors.ErrInvoiceNotFound, "invoice disappeared before it could be marked paid")
	}

	invoice.Status = models.InvoiceStatusPaid
	return transaction, invoice, nil
}
