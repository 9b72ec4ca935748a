package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ledgerdesk/internal/handlers"
	"ledgerdesk/internal/logger"
	"ledgerdesk/internal/middleware"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/services"
	"ledgerdesk/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Company{},
		&models.Category{},
		&models.Method{},
		&models.Storage{},
		&models.Transaction{},
		&models.Customer{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.ScheduledInvoice{},
		&models.ScheduledInvoiceItem{},
		&models.PendingTransaction{},
		&models.Permission{},
		&models.AuditScope{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	companyService := services.NewCompanyService(db)
	categoryService := services.NewCategoryService(db)
	methodService := services.NewMethodService(db)
	storageService := services.NewStorageService(db)
	transactionService := services.NewTransactionService(db, categoryService, methodService, storageService)
	customerService := services.NewCustomerService(db)
	invoiceService := services.NewInvoiceService(db, customerService, transactionService)
	pendingService := services.NewPendingService(db, transactionService)
	permissionService := services.NewPermissionService(db)
	reportService := services.NewReportService(db)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	companyHandler := handlers.NewCompanyHandler(companyService, userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	methodHandler := handlers.NewMethodHandler(methodService)
	storageHandler := handlers.NewStorageHandler(storageService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, companyService, auditService)
	pendingHandler := handlers.NewPendingHandler(pendingService, auditService)
	permissionHandler := handlers.NewPermissionHandler(permissionService)
	reportHandler := handlers.NewReportHandler(reportService, companyService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	companies := protected.Group("/companies")
	companies.POST("", companyHandler.CreateCompany)
	companies.GET("", companyHandler.GetCompanies)

	users := protected.Group("/users")
	users.POST("", middleware.RequireManager(), companyHandler.InviteUser)
	users.GET("", companyHandler.GetCompanyUsers)

	categories := protected.Group("/categories")
	categories.Use(middleware.RequirePermission(permissionService, models.ModuleCategories))
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/tree", categoryHandler.GetCategoryTree)

	methods := protected.Group("/methods")
	methods.Use(middleware.RequirePermission(permissionService, models.ModuleMethods))
	methods.POST("", methodHandler.CreateMethod)
	methods.GET("", methodHandler.GetMethods)

	storages := protected.Group("/storages")
	storages.Use(middleware.RequirePermission(permissionService, models.ModuleStorages))
	storages.POST("", storageHandler.CreateStorage)
	storages.GET("", storageHandler.GetStorages)

	transactions := protected.Group("/transactions")
	transactions.Use(middleware.RequirePermission(permissionService, models.ModuleTransactions))
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/archived", transactionHandler.GetArchivedTransactions)
	transactions.DELETE("/:id", transactionHandler.ArchiveTransaction)
	transactions.POST("/:id/restore", transactionHandler.RestoreTransaction)

	customers := protected.Group("/customers")
	customers.Use(middleware.RequirePermission(permissionService, models.ModuleCustomers))
	customers.POST("", customerHandler.CreateCustomer)
	customers.GET("", customerHandler.GetCustomers)

	invoices := protected.Group("/invoices")
	invoices.Use(middleware.RequirePermission(permissionService, models.ModuleInvoices))
	invoices.POST("", invoiceHandler.CreateInvoice)
	invoices.GET("", invoiceHandler.GetInvoices)
	invoices.GET("/:id", invoiceHandler.GetInvoice)
	invoices.PATCH("/:id", invoiceHandler.UpdateInvoice)
	invoices.POST("/:id/pay", invoiceHandler.MarkAsPaid)

	pending := protected.Group("/pending-transactions")
	pending.Use(middleware.RequirePermission(permissionService, models.ModulePendingTransactions))
	pending.POST("/import", pendingHandler.ImportCSV)
	pending.GET("", pendingHandler.GetPending)
	pending.PATCH("/:id", pendingHandler.UpdatePending)
	pending.POST("/:id/promote", pendingHandler.Promote)

	permissions := protected.Group("/permissions")
	permissions.GET("", permissionHandler.GetRolePermissions)
	permissions.POST("", middleware.RequireManager(), permissionHandler.ReplaceRolePermissions)
	permissions.GET("/audit-scope", permissionHandler.GetAuditScope)
	permissions.POST("/audit-scope", middleware.RequireManager(), permissionHandler.SetAuditScope)

	reports := protected.Group("/reports")
	reports.Use(middleware.RequirePermission(permissionService, models.ModuleReports))
	reports.GET("", reportHandler.GetReport)
	reports.GET("/csv", reportHandler.GetReportCSV)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// upload posts a multipart form with one CSV file field.
func (app *testApp) upload(t *testing.T, path, fileName, content, token string) *httptest.ResponseRecorder {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// data unwraps the {"data": ...} envelope around a success response.
func data(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	result := parseJSON(t, rec)
	payload, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object, got: %v", result)
	}
	return payload
}

// registerUser registers a new user and returns the access and refresh tokens.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"name":"Test User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string), result["refresh_token"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string), result["refresh_token"].(string)
}

// setupManager registers a user, creates a company, and logs in again so
// the returned token carries the company claim.
func (app *testApp) setupManager(t *testing.T, email string) (token string, companyID float64) {
	t.Helper()
	const password = "password123"
	first, _ := app.registerUser(t, email, password)

	rec := app.request("POST", "/api/v1/companies",
		`{"name":"Acme Trading","address":"1 High Street","currency_symbol":"£"}`, first)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create company failed: %d %s", rec.Code, rec.Body.String())
	}
	company := data(t, rec)

	token, _ = app.loginUser(t, email, password)
	return token, company["id"].(float64)
}

// seedLedger creates a category of the given type plus a method and a
// storage, returning their ids.
func (app *testApp) seedLedger(t *testing.T, token, categoryType string) (categoryID, methodID, storageID float64) {
	t.Helper()

	rec := app.request("POST", "/api/v1/categories",
		fmt.Sprintf(`{"name":"General %s","transaction_type":%q}`, categoryType, categoryType), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category failed: %d %s", rec.Code, rec.Body.String())
	}
	categoryID = data(t, rec)["id"].(float64)

	rec = app.request("POST", "/api/v1/methods", `{"name":"Bank Transfer"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create method failed: %d %s", rec.Code, rec.Body.String())
	}
	methodID = data(t, rec)["id"].(float64)

	rec = app.request("POST", "/api/v1/storages", `{"name":"Current Account","opening_balance":1000}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create storage failed: %d %s", rec.Code, rec.Body.String())
	}
	storageID = data(t, rec)["id"].(float64)

	return categoryID, methodID, storageID
}
