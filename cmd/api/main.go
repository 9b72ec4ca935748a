package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"

	"ledgerdesk/internal/config"
	"ledgerdesk/internal/database"
	"ledgerdesk/internal/handlers"
	"ledgerdesk/internal/logger"
	"ledgerdesk/internal/middleware"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/services"
	"ledgerdesk/internal/validator"

	_ "ledgerdesk/internal/docs" // Import swagger docs
)

// @title           LedgerDesk API
// @version         1.0
// @description     LedgerDesk is a multi-company bookkeeping service covering transactions, invoicing, CSV import and reporting.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	companyService := services.NewCompanyService(db)
	categoryService := services.NewCategoryService(db)
	methodService := services.NewMethodService(db)
	storageService := services.NewStorageService(db)
	transactionService := services.NewTransactionService(db, categoryService, methodService, storageService)
	customerService := services.NewCustomerService(db)
	invoiceService := services.NewInvoiceService(db, customerService, transactionService)
	scheduleService := services.NewScheduleService(db, customerService, invoiceService)
	pendingService := services.NewPendingService(db, transactionService)
	permissionService := services.NewPermissionService(db)
	reportService := services.NewReportService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	companyHandler := handlers.NewCompanyHandler(companyService, userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	methodHandler := handlers.NewMethodHandler(methodService)
	storageHandler := handlers.NewStorageHandler(storageService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, companyService, auditService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	pendingHandler := handlers.NewPendingHandler(pendingService, auditService)
	permissionHandler := handlers.NewPermissionHandler(permissionService)
	reportHandler := handlers.NewReportHandler(reportService, companyService)
	auditLogHandler := handlers.NewAuditLogHandler(auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RateLimit(rate.Every(100*time.Millisecond), 30))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Company routes
	companies := protected.Group("/companies")
	companies.POST("", companyHandler.CreateCompany)
	companies.GET("", companyHandler.GetCompanies)
	companies.GET("/:id", companyHandler.GetCompany)
	companies.PATCH("/:id", companyHandler.UpdateCompany)
	companies.DELETE("/:id", companyHandler.DeleteCompany)

	// User routes (only managers may invite)
	users := protected.Group("/users")
	users.POST("", middleware.RequireManager(), companyHandler.InviteUser)
	users.GET("", companyHandler.GetCompanyUsers)

	// Category routes
	categories := protected.Group("/categories")
	categories.Use(middleware.RequirePermission(permissionService, models.ModuleCategories))
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/tree", categoryHandler.GetCategoryTree)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PATCH("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Method routes
	methods := protected.Group("/methods")
	methods.Use(middleware.RequirePermission(permissionService, models.ModuleMethods))
	methods.POST("", methodHandler.CreateMethod)
	methods.GET("", methodHandler.GetMethods)
	methods.PATCH("/:id", methodHandler.UpdateMethod)
	methods.DELETE("/:id", methodHandler.DeleteMethod)

	// Storage routes
	storages := protected.Group("/storages")
	storages.Use(middleware.RequirePermission(permissionService, models.ModuleStorages))
	storages.POST("", storageHandler.CreateStorage)
	storages.GET("", storageHandler.GetStorages)
	storages.PATCH("/:id", storageHandler.UpdateStorage)
	storages.DELETE("/:id", storageHandler.DeleteStorage)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.Use(middleware.RequirePermission(permissionService, models.ModuleTransactions))
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/archived", transactionHandler.GetArchivedTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PATCH("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.ArchiveTransaction)
	transactions.POST("/:id/restore", transactionHandler.RestoreTransaction)

	// Customer routes
	customers := protected.Group("/customers")
	customers.Use(middleware.RequirePermission(permissionService, models.ModuleCustomers))
	customers.POST("", customerHandler.CreateCustomer)
	customers.GET("", customerHandler.GetCustomers)
	customers.GET("/:id", customerHandler.GetCustomer)
	customers.PATCH("/:id", customerHandler.UpdateCustomer)
	customers.DELETE("/:id", customerHandler.DeleteCustomer)

	// Invoice routes
	invoices := protected.Group("/invoices")
	invoices.Use(middleware.RequirePermission(permissionService, models.ModuleInvoices))
	invoices.POST("", invoiceHandler.CreateInvoice)
	invoices.GET("", invoiceHandler.GetInvoices)
	invoices.GET("/:id", invoiceHandler.GetInvoice)
	invoices.GET("/:id/pdf", invoiceHandler.GetInvoicePDF)
	invoices.PATCH("/:id", invoiceHandler.UpdateInvoice)
	invoices.DELETE("/:id", invoiceHandler.DeleteInvoice)
	invoices.POST("/:id/pay", invoiceHandler.MarkAsPaid)

	// Scheduled invoice routes
	schedules := protected.Group("/scheduled-invoices")
	schedules.Use(middleware.RequirePermission(permissionService, models.ModuleScheduledInvoices))
	schedules.POST("", scheduleHandler.CreateSchedule)
	schedules.GET("", scheduleHandler.GetSchedules)
	schedules.GET("/:id", scheduleHandler.GetSchedule)
	schedules.PATCH("/:id", scheduleHandler.UpdateSchedule)
	schedules.DELETE("/:id", scheduleHandler.DeleteSchedule)

	// Pending transaction routes
	pending := protected.Group("/pending-transactions")
	pending.Use(middleware.RequirePermission(permissionService, models.ModulePendingTransactions))
	pending.POST("/import", pendingHandler.ImportCSV)
	pending.GET("", pendingHandler.GetPending)
	pending.PATCH("/:id", pendingHandler.UpdatePending)
	pending.DELETE("/:id", pendingHandler.DeletePending)
	pending.POST("/:id/promote", pendingHandler.Promote)

	// Permission routes (grant maps are readable by anyone in the
	// company; only managers may rewrite them)
	permissions := protected.Group("/permissions")
	permissions.GET("", permissionHandler.GetRolePermissions)
	permissions.POST("", middleware.RequireManager(), permissionHandler.ReplaceRolePermissions)
	permissions.GET("/audit-scope", permissionHandler.GetAuditScope)
	permissions.POST("/audit-scope", middleware.RequireManager(), permissionHandler.SetAuditScope)

	// Report routes
	reports := protected.Group("/reports")
	reports.Use(middleware.RequirePermission(permissionService, models.ModuleReports))
	reports.GET("", reportHandler.GetReport)
	reports.GET("/pdf", reportHandler.GetReportPDF)
	reports.GET("/csv", reportHandler.GetReportCSV)

	// Audit log routes
	protected.GET("/audit-logs", auditLogHandler.GetAuditLogs)

	log.Infof("Starting LedgerDesk backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
