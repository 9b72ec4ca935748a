package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/pagination"
	"ledgerdesk/internal/services"
)

// CustomerHandler handles customer management requests
type CustomerHandler struct {
	customerService services.CustomerServicer
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService services.CustomerServicer) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// CustomerRequest represents the customer create/update payload
type CustomerRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Email   string `json:"email" binding:"omitempty,email,max=255"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address" binding:"max=500"`
}

// CreateCustomer creates a customer
// @Summary     Create customer
// @Description Create a customer for the active company
// @Tags        customers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CustomerRequest true "Customer data"
// @Success     201 {object} models.Customer "Created customer"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	customer, err := h.customerService.CreateCustomer(companyID, req.Name, req.Email, req.Phone, req.Address)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusCreated, customer)
}

// GetCustomers lists customers
// @Summary     List customers
// @Description Get a paginated list of the active company's customers
// @Tags        customers
// @Produce     json
// @Security    BearerAuth
// @Param       page  query int false "Page number"  default(1)
// @Param       limit query int false "Items per page" default(10)
// @Success     200 {object} pagination.PageResponse[models.Customer] "Paginated customers"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /customers [get]
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
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

	result, err := h.customerService.GetCompanyCustomers(companyID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, result)
}

// GetCustomer fetches one customer
// @Summary     Get customer
// @Description Get a customer by ID
// @Tags        customers
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Customer ID"
// @Success     200 {object} models.Customer "Customer"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	customerID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	customer, err := h.customerService.GetCustomerByID(companyID, customerID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, customer)
}

// UpdateCustomer updates a customer
// @Summary     Update customer
// @Description Update a customer's contact details
// @Tags        customers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int             true "Customer ID"
// @Param       request body CustomerRequest true "Customer data"
// @Success     200 {object} models.Customer "Updated customer"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /customers/{id} [patch]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	customerID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	customer, err := h.customerService.UpdateCustomer(companyID, customerID, req.Name, req.Email, req.Phone, req.Address)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, customer)
}

// DeleteCustomer deletes a customer
// @Summary     Delete customer
// @Description Soft-delete a customer; blocked while due invoices reference them
// @Tags        customers
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Customer ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Customer has due invoices"
// @Router      /customers/{id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	customerID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.customerService.DeleteCustomer(companyID, customerID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}
