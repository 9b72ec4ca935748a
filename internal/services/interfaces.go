package services

import (
	"context"
	"io"
	"time"

	"gorm.io/gorm"

	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string, role models.Role, companyID *uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
	GetCompanyUsers(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
}

// CompanyServicer defines the contract for company-related business logic.
type CompanyServicer interface {
	CreateCompany(ownerID uint, name, address, currencySymbol string) (*models.Company, error)
	GetCompanyByID(companyID uint) (*models.Company, error)
	GetUserCompanies(ownerID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Company], error)
	UpdateCompany(companyID uint, name, address, currencySymbol string) (*models.Company, error)
	DeleteCompany(companyID uint) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(companyID uint, name string, categoryType models.TransactionType, parentID *uint, auditStatus models.AuditStatus) (*models.Category, error)
	GetCompanyCategories(companyID uint, categoryType *models.TransactionType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryTree(companyID uint, categoryType models.TransactionType) ([]*CategoryNode, error)
	GetCategoryByID(companyID, categoryID uint) (*models.Category, error)
	UpdateCategory(companyID, categoryID uint, name string, parentID *uint, auditStatus *models.AuditStatus) (*models.Category, error)
	DeleteCategory(companyID, categoryID uint) error
}

// MethodServicer defines the contract for payment-method business logic.
type MethodServicer interface {
	CreateMethod(companyID uint, name string) (*models.Method, error)
	GetCompanyMethods(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Method], error)
	GetMethodByID(companyID, methodID uint) (*models.Method, error)
	UpdateMethod(companyID, methodID uint, name string, isActive *bool) (*models.Method, error)
	DeleteMethod(companyID, methodID uint) error
}

// StorageServicer defines the contract for storage (bank/cash bucket) logic.
type StorageServicer interface {
	CreateStorage(companyID uint, name string, openingBalance float64) (*models.Storage, error)
	GetCompanyStorages(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Storage], error)
	GetStorageByID(companyID, storageID uint) (*models.Storage, error)
	UpdateStorage(companyID, storageID uint, name string, isActive *bool) (*models.Storage, error)
	DeleteStorage(companyID, storageID uint) error
	// ApplyAmount adjusts the running balance for a transaction of the
	// given type; a negative sign reverses a previous application.
	ApplyAmount(tx *gorm.DB, storageID uint, transactionType models.TransactionType, amount float64) error
}

// CreateTransactionInput carries the writable fields of a transaction.
type CreateTransactionInput struct {
	Date          time.Time
	Type          models.TransactionType
	Amount        float64
	CategoryID    uint
	MethodID      uint
	StorageID     uint
	InvoiceNumber string
	InvoiceDate   *time.Time
	Details       string
	Description   string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *uint
	MethodID   *uint
	StorageID  *uint
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(companyID, userID uint, input CreateTransactionInput) (*models.Transaction, error)
	GetCompanyTransactions(companyID uint, page pagination.PageRequest, filter TransactionFilter, scope *models.AuditScope) (*pagination.PageResponse[models.Transaction], error)
	GetArchivedTransactions(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(companyID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(companyID, transactionID uint, input CreateTransactionInput) (*models.Transaction, error)
	ArchiveTransaction(companyID, transactionID uint) error
	RestoreTransaction(companyID, transactionID uint) error
}

// CustomerServicer defines the contract for customer-related business logic.
type CustomerServicer interface {
	CreateCustomer(companyID uint, name, email, phone, address string) (*models.Customer, error)
	GetCompanyCustomers(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Customer], error)
	GetCustomerByID(companyID, customerID uint) (*models.Customer, error)
	UpdateCustomer(companyID, customerID uint, name, email, phone, address string) (*models.Customer, error)
	DeleteCustomer(companyID, customerID uint) error
}

// InvoiceItemInput is one writable invoice line.
type InvoiceItemInput struct {
	Details  string
	Quantity float64
	Rate     float64
}

// CreateInvoiceInput carries the writable fields of an invoice.
type CreateInvoiceInput struct {
	CustomerID     uint
	Date           time.Time
	Items          []InvoiceItemInput
	Tax            float64
	Discount       float64
	DiscountType   models.DiscountType
	PartialPayment float64
	Type           models.TransactionType
	BankID         *uint
}

// PayInvoiceInput selects the ledger coordinates for the transaction
// created when an invoice is marked as paid.
type PayInvoiceInput struct {
	CategoryID uint
	MethodID   uint
	StorageID  uint
	Date       time.Time
}

// InvoiceServicer defines the contract for invoice-related business logic.
type InvoiceServicer interface {
	CreateInvoice(companyID uint, input CreateInvoiceInput) (*models.Invoice, error)
	GetCompanyInvoices(companyID uint, status *models.InvoiceStatus, customerID *uint, page pagination.PageRequest) (*pagination.PageResponse[models.Invoice], error)
	GetInvoiceByID(companyID, invoiceID uint) (*models.Invoice, error)
	UpdateInvoice(companyID, invoiceID uint, input CreateInvoiceInput) (*models.Invoice, error)
	DeleteInvoice(companyID, invoiceID uint) error
	MarkAsPaid(companyID, userID, invoiceID uint, input PayInvoiceInput) (*models.Transaction, *models.Invoice, error)
}

// CreateScheduleInput carries the writable fields of a scheduled invoice.
type CreateScheduleInput struct {
	CustomerID     uint
	Items          []InvoiceItemInput
	Tax            float64
	Discount       float64
	DiscountType   models.DiscountType
	Type           models.TransactionType
	Frequency      models.Frequency
	ScheduledDay   int
	ScheduledMonth int
}

// ScheduleServicer defines the contract for scheduled-invoice business logic.
type ScheduleServicer interface {
	CreateSchedule(companyID uint, input CreateScheduleInput) (*models.ScheduledInvoice, error)
	GetCompanySchedules(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.ScheduledInvoice], error)
	GetScheduleByID(companyID, scheduleID uint) (*models.ScheduledInvoice, error)
	UpdateSchedule(companyID, scheduleID uint, input CreateScheduleInput) (*models.ScheduledInvoice, error)
	DeleteSchedule(companyID, scheduleID uint) error
	// ProcessDue promotes every active schedule that is due at now into
	// a due invoice and returns how many were generated. Failures on a
	// single schedule are logged and skipped; the next tick retries.
	ProcessDue(ctx context.Context, now time.Time) (int, error)
}

// PromotePendingInput supplies the ledger coordinates a pending
// transaction still needs before it can become a real transaction.
type PromotePendingInput struct {
	Type       models.TransactionType
	CategoryID uint
	MethodID   uint
	StorageID  uint
}

// PendingServicer defines the contract for pending-transaction business logic.
type PendingServicer interface {
	ImportCSV(companyID uint, fileName string, r io.Reader) ([]models.PendingTransaction, error)
	GetCompanyPending(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.PendingTransaction], error)
	GetPendingByID(companyID, pendingID uint) (*models.PendingTransaction, error)
	UpdatePending(companyID, pendingID uint, input PromotePendingInput) (*models.PendingTransaction, error)
	DeletePending(companyID, pendingID uint) error
	Promote(companyID, userID, pendingID uint, input PromotePendingInput) (*models.Transaction, error)
}

// Grant is the CRUD permission set for one module.
type Grant struct {
	Create bool `json:"create"`
	View   bool `json:"view"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

// PermissionServicer defines the contract for permission management.
type PermissionServicer interface {
	GetRolePermissions(companyID uint, role models.Role) (map[string]Grant, error)
	ReplaceRolePermissions(companyID uint, role models.Role, grants map[string]Grant) error
	Allowed(companyID uint, role models.Role, module, action string) (bool, error)
	GetAuditScope(companyID uint) (*models.AuditScope, error)
	SetAuditScope(companyID uint, storageIDs, methodIDs []uint) (*models.AuditScope, error)
}

// ReportServicer defines the contract for report building.
type ReportServicer interface {
	BuildReport(ctx context.Context, companyID uint, transactionType models.TransactionType, from, to time.Time, scope *models.AuditScope) (*Report, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, companyID uint, action, resourceType string, resourceID uint, ipAddress, changes string)
	GetCompanyLogs(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
