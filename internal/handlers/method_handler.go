package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/pagination"
	"ledgerdesk/internal/services"
)

// MethodHandler handles payment-method management requests
type MethodHandler struct {
	methodService services.MethodServicer
}

// NewMethodHandler creates a new MethodHandler
func NewMethodHandler(methodService services.MethodServicer) *MethodHandler {
	return &MethodHandler{methodService: methodService}
}

// MethodRequest represents the method create payload
type MethodRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// UpdateMethodRequest represents the method update payload
type UpdateMethodRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	IsActive *bool  `json:"is_active"`
}

// CreateMethod creates a payment method
// @Summary     Create method
// @Description Create a payment method for the active company
// @Tags        methods
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body MethodRequest true "Method data"
// @Success     201 {object} models.Method "Created method"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /methods [post]
func (h *MethodHandler) CreateMethod(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req MethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	method, err := h.methodService.CreateMethod(companyID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusCreated, method)
}

// GetMethods lists payment methods
// @Summary     List methods
// @Description Get a paginated list of the active company's payment methods
// @Tags        methods
// @Produce     json
// @Security    BearerAuth
// @Param       page  query int false "Page number"  default(1)
// @Param       limit query int false "Items per page" default(10)
// @Success     200 {object} pagination.PageResponse[models.Method] "Paginated methods"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /methods [get]
func (h *MethodHandler) GetMethods(c *gin.Context) {
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

	result, err := h.methodService.GetCompanyMethods(companyID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, result)
}

// UpdateMethod updates a payment method
// @Summary     Update method
// @Description Update a payment method's name or active flag
// @Tags        methods
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                 true "Method ID"
// @Param       request body UpdateMethodRequest true "Method data"
// @Success     200 {object} models.Method "Updated method"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /methods/{id} [patch]
func (h *MethodHandler) UpdateMethod(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	methodID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	method, err := h.methodService.UpdateMethod(companyID, methodID, req.Name, req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, method)
}

// DeleteMethod deletes a payment method
// @Summary     Delete method
// @Description Soft-delete a payment method
// @Tags        methods
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Method ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /methods/{id} [delete]
func (h *MethodHandler) DeleteMethod(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	methodID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.methodService.DeleteMethod(companyID, methodID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Method deleted successfully"})
}
