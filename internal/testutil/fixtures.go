package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"ledgerdesk/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a manager user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     fmt.Sprintf("Test User %d", nextID()),
		Role:     models.RoleManager,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCompany creates a company owned by the user and attaches them to it.
func CreateTestCompany(t *testing.T, db *gorm.DB, owner *models.User) *models.Company {
	t.Helper()

	company := &models.Company{
		Name:           fmt.Sprintf("Test Company %d", nextID()),
		CurrencySymbol: "£",
		OwnerID:        owner.ID,
	}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("failed to create test company: %v", err)
	}
	if err := db.Model(owner).Update("company_id", company.ID).Error; err != nil {
		t.Fatalf("failed to attach owner to company: %v", err)
	}
	owner.CompanyID = &company.ID
	return company
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, companyID uint, categoryType models.TransactionType) *models.Category {
	t.Helper()

	category := &models.Category{
		CompanyID:   companyID,
		Name:        fmt.Sprintf("Test Category %d", nextID()),
		Type:        categoryType,
		AuditStatus: models.AuditStatusAuditable,
		IsActive:    true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestChildCategory creates a category nested under a parent.
func CreateTestChildCategory(t *testing.T, db *gorm.DB, parent *models.Category) *models.Category {
	t.Helper()

	category := &models.Category{
		CompanyID:   parent.CompanyID,
		Name:        fmt.Sprintf("Test Child %d", nextID()),
		Type:        parent.Type,
		ParentID:    &parent.ID,
		AuditStatus: models.AuditStatusAuditable,
		IsActive:    true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test child category: %v", err)
	}
	return category
}

// CreateTestMethod creates a payment method.
func CreateTestMethod(t *testing.T, db *gorm.DB, companyID uint) *models.Method {
	t.Helper()

	method := &models.Method{
		CompanyID: companyID,
		Name:      fmt.Sprintf("Test Method %d", nextID()),
		IsActive:  true,
	}
	if err := db.Create(method).Error; err != nil {
		t.Fatalf("failed to create test method: %v", err)
	}
	return method
}

// CreateTestStorage creates a storage with a zero opening balance.
func CreateTestStorage(t *testing.T, db *gorm.DB, companyID uint) *models.Storage {
	t.Helper()
	return CreateTestStorageWithBalance(t, db, companyID, 0)
}

// CreateTestStorageWithBalance creates a storage with the given opening balance.
func CreateTestStorageWithBalance(t *testing.T, db *gorm.DB, companyID uint, openingBalance float64) *models.Storage {
	t.Helper()

	storage := &models.Storage{
		CompanyID:      companyID,
		Name:           fmt.Sprintf("Test Storage %d", nextID()),
		OpeningBalance: openingBalance,
		Balance:        openingBalance,
		IsActive:       true,
	}
	if err := db.Create(storage).Error; err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	return storage
}

// CreateTestTransaction creates a transaction with the given ledger coordinates.
func CreateTestTransaction(t *testing.T, db *gorm.DB, companyID, userID uint, transactionType models.TransactionType, amount float64, categoryID, methodID, storageID uint) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		CompanyID:  companyID,
		UserID:     userID,
		Date:       time.Now(),
		Type:       transactionType,
		Amount:     amount,
		CategoryID: categoryID,
		MethodID:   methodID,
		StorageID:  storageID,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}

// CreateTestCustomer creates a customer.
func CreateTestCustomer(t *testing.T, db *gorm.DB, companyID uint) *models.Customer {
	t.Helper()

	customer := &models.Customer{
		CompanyID: companyID,
		Name:      fmt.Sprintf("Test Customer %d", nextID()),
		Email:     fmt.Sprintf("customer%d@test.com", nextID()),
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("failed to create test customer: %v", err)
	}
	return customer
}

// CreateTestInvoice creates a due invoice with a single line item.
func CreateTestInvoice(t *testing.T, db *gorm.DB, companyID, customerID uint, amount float64) *models.Invoice {
	t.Helper()

	invoice := &models.Invoice{
		CompanyID:  companyID,
		CustomerID: customerID,
		Date:       time.Now(),
		Status:     models.InvoiceStatusDue,
		Type:       models.TransactionTypeInflow,
		Amount:     amount,
		Items: []models.InvoiceItem{
			{Details: "Test item", Quantity: 1, Rate: amount, Amount: amount},
		},
	}
	if err := db.Create(invoice).Error; err != nil {
		t.Fatalf("failed to create test invoice: %v", err)
	}
	return invoice
}
