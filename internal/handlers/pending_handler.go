package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
	"ledgerdesk/internal/services"
)

// maxImportSize caps uploaded CSV files at 5 MiB.
const maxImportSize = 5 << 20

// PendingHandler handles CSV import and pending-transaction requests
type PendingHandler struct {
	pendingService services.PendingServicer
	auditService   services.AuditServicer
}

// NewPendingHandler creates a new PendingHandler
func NewPendingHandler(pendingService services.PendingServicer, auditService services.AuditServicer) *PendingHandler {
	return &PendingHandler{pendingService: pendingService, auditService: auditService}
}

// PendingUpdateRequest assigns ledger coordinates to a draft row
type PendingUpdateRequest struct {
	Type       models.TransactionType `json:"transaction_type" binding:"omitempty,transaction_type"`
	CategoryID uint                   `json:"category_id"`
	MethodID   uint                   `json:"method_id"`
	StorageID  uint                   `json:"storage_id"`
}

// PromoteRequest finalizes a draft row into a real transaction
type PromoteRequest struct {
	Type       models.TransactionType `json:"transaction_type" binding:"omitempty,transaction_type"`
	CategoryID uint                   `json:"category_id"`
	MethodID   uint                   `json:"method_id"`
	StorageID  uint                   `json:"storage_id"`
}

// ImportCSV uploads a ledger CSV
// @Summary     Import ledger CSV
// @Description Upload a bank-ledger CSV; surviving rows become pending transactions
// @Tags        pending-transactions
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "CSV file"
// @Success     201 {array} models.PendingTransaction "Imported rows"
// @Failure     400 {object} ErrorResponse "Invalid or empty file"
// @Router      /pending-transactions/import [post]
func (h *PendingHandler) ImportCSV(c *gin.Context) {
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

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "A CSV file is required"))
		return
	}
	if fileHeader.Size > maxImportSize {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "File exceeds the 5 MiB limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	defer file.Close()

	pending, err := h.pendingService.ImportCSV(companyID, fileHeader.Filename, file)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, companyID, "import", "pending-transaction", 0, c.ClientIP(), fileHeader.Filename)
	respondData(c, http.StatusCreated, pending)
}

// GetPending lists pending transactions
// @Summary     List pending transactions
// @Description Get a paginated list of the active company's pending transactions
// @Tags        pending-transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page  query int false "Page number"  default(1)
// @Param       limit query int false "Items per page" default(10)
// @Success     200 {object} pagination.PageResponse[models.PendingTransaction] "Paginated pending transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /pending-transactions [get]
func (h *PendingHandler) GetPending(c *gin.Context) {
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

	result, err := h.pendingService.GetCompanyPending(companyID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, result)
}

// UpdatePending assigns ledger coordinates to a draft row
// @Summary     Update pending transaction
// @Description Assign or correct a draft row's type, category, method or storage
// @Tags        pending-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                  true "Pending transaction ID"
// @Param       request body PendingUpdateRequest true "Coordinates"
// @Success     200 {object} models.PendingTransaction "Updated row"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /pending-transactions/{id} [patch]
func (h *PendingHandler) UpdatePending(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	pendingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PendingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	pending, err := h.pendingService.UpdatePending(companyID, pendingID, services.PromotePendingInput{
		Type:       req.Type,
		CategoryID: req.CategoryID,
		MethodID:   req.MethodID,
		StorageID:  req.StorageID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, pending)
}

// DeletePending discards a draft row
// @Summary     Delete pending transaction
// @Description Discard a draft row without promoting it
// @Tags        pending-transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Pending transaction ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /pending-transactions/{id} [delete]
func (h *PendingHandler) DeletePending(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	pendingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.pendingService.DeletePending(companyID, pendingID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pending transaction deleted successfully"})
}

// Promote turns a draft row into a real transaction
// @Summary     Promote pending transaction
// @Description Create a real transaction from a draft row and remove the draft. Rows without a resolved inflow/outflow type are rejected.
// @Tags        pending-transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int            true "Pending transaction ID"
// @Param       request body PromoteRequest true "Final ledger coordinates"
// @Success     201 {object} models.Transaction "Created transaction"
// @Failure     400 {object} ErrorResponse "Unresolved type or invalid coordinates"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /pending-transactions/{id}/promote [post]
func (h *PendingHandler) Promote(c *gin.Context) {
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
	pendingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.pendingService.Promote(companyID, userID, pendingID, services.PromotePendingInput{
		Type:       req.Type,
		CategoryID: req.CategoryID,
		MethodID:   req.MethodID,
		StorageID:  req.StorageID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, companyID, "promote", "pending-transaction", pendingID, c.ClientIP(), "")
	respondData(c, http.StatusCreated, transaction)
}
