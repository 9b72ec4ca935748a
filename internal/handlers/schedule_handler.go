package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
	"ledgerdesk/internal/services"
)

// ScheduleHandler handles scheduled-invoice management requests
type ScheduleHandler struct {
	scheduleService services.ScheduleServicer
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(scheduleService services.ScheduleServicer) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// ScheduleRequest represents the scheduled-invoice create/update payload
type ScheduleRequest struct {
	CustomerID     uint                   `json:"customer_id" binding:"required"`
	Items          []InvoiceItemRequest   `json:"items" binding:"required,min=1,dive"`
	Tax            float64                `json:"tax" binding:"gte=0"`
	Discount       float64                `json:"discount" binding:"gte=0"`
	DiscountType   models.DiscountType    `json:"discount_type" binding:"omitempty,discount_type"`
	Type           models.TransactionType `json:"transaction_type" binding:"required,transaction_type"`
	Frequency      models.Frequency       `json:"frequency" binding:"required,frequency"`
	ScheduledDay   int                    `json:"scheduled_day" binding:"required,min=1,max=28"`
	ScheduledMonth int                    `json:"scheduled_month" binding:"omitempty,min=1,max=12"`
}

func (r ScheduleRequest) toInput() services.CreateScheduleInput {
	items := make([]services.InvoiceItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, services.InvoiceItemInput{
			Details:  item.Details,
			Quantity: item.Quantity,
			Rate:     item.Rate,
		})
	}
	return services.CreateScheduleInput{
		CustomerID:     r.CustomerID,
		Items:          items,
		Tax:            r.Tax,
		Discount:       r.Discount,
		DiscountType:   r.DiscountType,
		Type:           r.Type,
		Frequency:      r.Frequency,
		ScheduledDay:   r.ScheduledDay,
		ScheduledMonth: r.ScheduledMonth,
	}
}

// CreateSchedule creates a scheduled invoice
// @Summary     Create scheduled invoice
// @Description Create a recurring invoice template for the active company
// @Tags        scheduled-invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ScheduleRequest true "Schedule data"
// @Success     201 {object} models.ScheduledInvoice "Created schedule"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Customer not found"
// @Router      /scheduled-invoices [post]
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	schedule, err := h.scheduleService.CreateSchedule(companyID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusCreated, schedule)
}

// GetSchedules lists scheduled invoices
// @Summary     List scheduled invoices
// @Description Get a paginated list of the active company's scheduled invoices
// @Tags        scheduled-invoices
// @Produce     json
// @Security    BearerAuth
// @Param       page  query int false "Page number"  default(1)
// @Param       limit query int false "Items per page" default(10)
// @Success     200 {object} pagination.PageResponse[models.ScheduledInvoice] "Paginated schedules"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /scheduled-invoices [get]
func (h *ScheduleHandler) GetSchedules(c *gin.Context) {
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

	result, err := h.scheduleService.GetCompanySchedules(companyID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, result)
}

// GetSchedule fetches one scheduled invoice
// @Summary     Get scheduled invoice
// @Description Get a scheduled invoice by ID
// @Tags        scheduled-invoices
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Schedule ID"
// @Success     200 {object} models.ScheduledInvoice "Schedule"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /scheduled-invoices/{id} [get]
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	scheduleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	schedule, err := h.scheduleService.GetScheduleByID(companyID, scheduleID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, schedule)
}

// UpdateSchedule updates a scheduled invoice
// @Summary     Update scheduled invoice
// @Description Replace a scheduled invoice's items and recurrence fields
// @Tags        scheduled-invoices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int             true "Schedule ID"
// @Param       request body ScheduleRequest true "Schedule data"
// @Success     200 {object} models.ScheduledInvoice "Updated schedule"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /scheduled-invoices/{id} [patch]
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	scheduleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	schedule, err := h.scheduleService.UpdateSchedule(companyID, scheduleID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, schedule)
}

// DeleteSchedule deletes a scheduled invoice
// @Summary     Delete scheduled invoice
// @Description Delete a scheduled invoice and its items
// @Tags        scheduled-invoices
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Schedule ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /scheduled-invoices/{id} [delete]
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	scheduleID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.scheduleService.DeleteSchedule(companyID, scheduleID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Scheduled invoice deleted successfully"})
}
