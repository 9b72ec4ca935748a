package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
	"ledgerdesk/internal/services"
)

// TransactionHandler handles ledger transaction requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// TransactionRequest represents the transaction create/update payload
type TransactionRequest struct {
	Date          time.Time              `json:"transaction_date" binding:"required"`
	Type          models.TransactionType `json:"transaction_type" binding:"required,transaction_type"`
	Amount        float64                `json:"transaction_amount" binding:"required,gt=0"`
	CategoryID    uint                   `json:"category_id" binding:"required"`
	MethodID      uint                   `json:"method_id" binding:"required"`
	StorageID     uint                   `json:"storage_id" binding:"required"`
	InvoiceNumber string                 `json:"invoice_number" binding:"max=255"`
	InvoiceDate   *time.Time             `json:"invoice_date"`
	Details       string                 `json:"details" binding:"max=1000"`
	Description   string                 `json:"description" binding:"max=1000"`
}

func (r TransactionRequest) toInput() services.CreateTransactionInput {
	return services.CreateTransactionInput{
		Date:          r.Date,
		Type:          r.Type,
		Amount:        r.Amount,
		CategoryID:    r.CategoryID,
		MethodID:      r.MethodID,
		StorageID:     r.StorageID,
		InvoiceNumber: r.InvoiceNumber,
		InvoiceDate:   r.InvoiceDate,
		Details:       r.Details,
		Description:   r.Description,
	}
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid from date")
		}
		filter.FromDate = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid to date")
		}
		filter.ToDate = &to
	}
	if raw := c.Query("transaction_type"); raw != "" {
		t := models.TransactionType(raw)
		if t != models.TransactionTypeInflow && t != models.TransactionTypeOutflow {
			return filter, apperrors.ErrInvalidTransactionType
		}
		filter.Type = &t
	}
	for param, target := range map[string]**uint{
		"category_id": &filter.CategoryID,
		"method_id":   &filter.MethodID,
		"storage_id":  &filter.StorageID,
	} {
		if raw := c.Query(param); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
			}
			value := uint(id)
			*target = &value
		}
	}

	return filter, nil
}

// CreateTransaction creates a transaction
// @Summary     Create transaction
// @Description Record a transaction and adjust the target storage's balance
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransactionRequest true "Transaction data"
// @Success     201 {object} models.Transaction "Created transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or type mismatch"
// @Failure     404 {object} ErrorResponse "Category, method or storage not found"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.CreateTransaction(companyID, userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, companyID, "create", "transaction", transaction.ID, c.ClientIP(), "")
	respondData(c, http.StatusCreated, transaction)
}

// GetTransactions lists transactions
// @Summary     List transactions
// @Description Get a paginated, filtered list of the active company's transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       from             query string false "Start date (YYYY-MM-DD)"
// @Param       to               query string false "End date (YYYY-MM-DD)"
// @Param       transaction_type query string false "inflow or outflow"
// @Param       category_id      query int    false "Category filter"
// @Param       method_id        query int    false "Method filter"
// @Param       storage_id       query int    false "Storage filter"
// @Param       page  query int false "Page number"  default(1)
// @Param       limit query int false "Items per page" default(10)
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetCompanyTransactions(companyID, page, filter, getAuditScope(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, result)
}

// GetArchivedTransactions lists archived transactions
// @Summary     List archived transactions
// @Description Get a paginated list of the active company's archived transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page  query int false "Page number"  default(1)
// @Param       limit query int false "Items per page" default(10)
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated archived transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /transactions/archived [get]
func (h *TransactionHandler) GetArchivedTransactions(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.transactionService.GetArchivedTransactions(companyID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, result)
}

// GetTransaction fetches one transaction
// @Summary     Get transaction
// @Description Get a transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(companyID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, transaction)
}

// UpdateTransaction updates a transaction
// @Summary     Update transaction
// @Description Update a transaction, rebalancing the affected storages
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                true "Transaction ID"
// @Param       request body TransactionRequest true "Transaction data"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Transaction is archived"
// @Router      /transactions/{id} [patch]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(companyID, transactionID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, companyID, "update", "transaction", transaction.ID, c.ClientIP(), "")
	respondData(c, http.StatusOK, transaction)
}

// ArchiveTransaction archives a transaction
// @Summary     Archive transaction
// @Description Move a transaction to the archive, reversing its balance effect
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} map[string]string "Archived"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Already archived"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) ArchiveTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.ArchiveTransaction(companyID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, companyID, "archive", "transaction", transactionID, c.ClientIP(), "")
	c.JSON(http.StatusOK, gin.H{"message": "Transaction archived successfully"})
}

// RestoreTransaction restores an archived transaction
// @Summary     Restore transaction
// @Description Restore an archived transaction, reapplying its balance effect
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} map[string]string "Restored"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Not archived"
// @Router      /transactions/{id}/restore [post]
func (h *TransactionHandler) RestoreTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.RestoreTransaction(companyID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, companyID, "restore", "transaction", transactionID, c.ClientIP(), "")
	c.JSON(http.StatusOK, gin.H{"message": "Transaction restored successfully"})
}
