package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/logger"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
	"ledgerdesk/internal/pdf"
	"ledgerdesk/internal/services"
)

// InvoiceHandler handles invoice management requests
type InvoiceHandler struct {
	invoiceService services.InvoiceServicer
	companyService services.CompanyServicer
	auditService   services.AuditServicer
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService services.InvoiceServicer, companyService services.CompanyServicer, auditService services.AuditServicer) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, companyService: companyService, auditService: auditService}
}

// InvoiceItemRequest is one invoice line in the request payload
type InvoiceItemRequest struct {
	Details  string  `json:"details" binding:"required,max=500"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Rate     float64 `json:"rate" binding:"required,gte=0"`
}

// InvoiceRequest represents the invoice create/update payload
type InvoiceRequest struct {
	CustomerID     uint                   `json:"customer_id" binding:"required"`
	Date           time.Time              `json:"date" binding:"required"`
	Items          []InvoiceItemRequest   `json:"items" binding:"required,min=1,dive"`
	Tax            float64                `json:"tax" binding:"gte=0"`
	Discount       float64                `json:"discount" binding:"gte=0"`
	DiscountType   models.DiscountType    `json:"discount_type" binding:"omitempty,discount_type"`
	PartialPayment float64                `json:"partial_payment" binding:"gte=0"`
	Type           models.TransactionType `json:"transaction_type" binding:"required,transaction_type"`
	BankID         *uint                  `json:"bank_id"`
}

// PayInvoiceRequest selects where the payment lands in the ledger
type PayInvoiceRequest struct {
	CategoryID uint      `json:"category_id" binding:"required"`
	MethodID   uint      `json:"method_id" binding:"required"`
	StorageID  uint      `json:"storage_id" binding:"required"`
	Date       time.Time `json:"date"`
}

func (r InvoiceRequest) toInput() services.CreateInvoiceInput {
	items := make([]services.InvoiceItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, services.InvoiceItemInput{
			Details:  item.Details,
			Quantity: item.Quantity,
			Rate:     item.Rate,
		})
	}
	return services.CreateInvoiceInput{
		CustomerID:     r.CustomerID,
		Date:           r.Date,
		Items:          items,
		Tax:            r.Tax,
		Discount:       r.Discount,
		DiscountType:   r.DiscountType,
		PartialPayment: r.PartialPayment,
		Type:           r.Type,
		BankID:         r.BankID,
	}
}

// CreateInvoice creates an invoice
// @Summary     Create invoice
// @Description Create a due invoice with line items for the active company
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body InvoiceRequest true "Invoice data"
// @Success     201 {object} models.Invoice "Created invoice"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Customer not found"
// @Router      /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(companyID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusCreated, invoice)
}

// GetInvoices lists invoices
// @Summary     List invoices
// @Description Get a paginated list of the active company's invoices
// @Tags        invoices
// @Produce     json
// @Security    BearerAuth
// @Param       status      query string false "due or paid"
// @Param       customer_id query int    false "Customer filter"
// @Param       page  query int false "Page number"  default(1)
// @Param       limit query int false "Items per page" default(10)
// @Success     200 {object} pagination.PageResponse[models.Invoice] "Paginated invoices"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /invoices [get]
func (h *InvoiceHandler) GetInvoices(c *gin.Context) {
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

	var status *models.InvoiceStatus
	if raw := c.Query("status"); raw != "" {
		s := models.InvoiceStatus(raw)
		if s != models.InvoiceStatusDue && s != models.InvoiceStatusPaid {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid status"))
			return
		}
		status = &s
	}

	var customerID *uint
	if raw := c.Query("customer_id"); raw != "" {
		id, err := parseQueryID(raw)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid customer_id"))
			return
		}
		customerID = &id
	}

	result, err := h.invoiceService.GetCompanyInvoices(companyID, status, customerID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, result)
}

// GetInvoice fetches one invoice
// @Summary     Get invoice
// @Description Get an invoice by ID with its items and customer
// @Tags        invoices
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Invoice ID"
// @Success     200 {object} models.Invoice "Invoice"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	invoiceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoice, err := h.invoiceService.GetInvoiceByID(companyID, invoiceID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, invoice)
}

// UpdateInvoice updates a due invoice
// @Summary     Update invoice
// @Description Replace a due invoice's items and fields; paid invoices are immutable
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int            true "Invoice ID"
// @Param       request body InvoiceRequest true "Invoice data"
// @Success     200 {object} models.Invoice "Updated invoice"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Invoice already paid"
// @Router      /invoices/{id} [patch]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	invoiceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(companyID, invoiceID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, invoice)
}

// DeleteInvoice deletes an invoice
// @Summary     Delete invoice
// @Description Delete an invoice and its items
// @Tags        invoices
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Invoice ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	invoiceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.invoiceService.DeleteInvoice(companyID, invoiceID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}

// MarkAsPaid records payment of an invoice
// @Summary     Mark invoice as paid
// @Description Create a payment transaction and flip the invoice status to paid. The two writes are sequential, so the transaction may exist even if the status flip fails; the response reports the created transaction in that case.
// @Tags        invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Invoice ID"
// @Param       request body PayInvoiceRequest true "Payment ledger coordinates"
// @Success     200 {object} map[string]interface{} "Transaction and paid invoice"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Invoice already paid"
// @Router      /invoices/{id}/pay [post]
func (h *InvoiceHandler) MarkAsPaid(c *gin.Context) {
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
	invoiceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	transaction, invoice, err := h.invoiceService.MarkAsPaid(companyID, userID, invoiceID, services.PayInvoiceInput{
		CategoryID: req.CategoryID,
		MethodID:   req.MethodID,
		StorageID:  req.StorageID,
		Date:       req.Date,
	})
	if err != nil {
		if transaction != nil {
			// The payment transaction was written but the status flip
			// failed. Surface both facts so the caller can reconcile.
			logger.Get().Errorw("invoice status flip failed after payment transaction",
				"invoice_id", invoiceID,
				"transaction_id", transaction.ID,
				"error", err,
			)
			var appErr = apperrors.ErrInternalServer
			c.JSON(appErr.StatusCode, gin.H{
				"error": gin.H{
					"code":    appErr.Code,
					"message": fmt.Sprintf("Payment transaction %d was recorded but the invoice could not be marked paid", transaction.ID),
				},
				"transaction": transaction,
			})
			return
		}
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, companyID, "pay", "invoice", invoiceID, c.ClientIP(), "")
	respondData(c, http.StatusOK, gin.H{
		"transaction": transaction,
		"invoice":     invoice,
	})
}

// GetInvoicePDF renders an invoice as PDF
// @Summary     Download invoice PDF
// @Description Render an invoice as a PDF document
// @Tags        invoices
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       id path int true "Invoice ID"
// @Success     200 {file} binary "PDF document"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /invoices/{id}/pdf [get]
func (h *InvoiceHandler) GetInvoicePDF(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	invoiceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoice, err := h.invoiceService.GetInvoiceByID(companyID, invoiceID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	company, err := h.companyService.GetCompanyByID(companyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data, err := pdf.GenerateInvoicePDF(invoice, company)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", invoice.InvID))
	c.Data(http.StatusOK, "application/pdf", data)
}
