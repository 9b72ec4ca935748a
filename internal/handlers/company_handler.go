package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
	"ledgerdesk/internal/services"
)

// CompanyHandler handles company management requests
type CompanyHandler struct {
	companyService services.CompanyServicer
	userService    services.UserServicer
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyService services.CompanyServicer, userService services.UserServicer) *CompanyHandler {
	return &CompanyHandler{companyService: companyService, userService: userService}
}

// CompanyRequest represents the company create/update payload
type CompanyRequest struct {
	Name           string `json:"name" binding:"required,max=255"`
	Address        string `json:"address" binding:"max=500"`
	CurrencySymbol string `json:"currency_symbol" binding:"max=8"`
}

// InviteUserRequest adds a user to the active company.
type InviteUserRequest struct {
	Email    string      `json:"email" binding:"required,email,max=255"`
	Password string      `json:"password" binding:"required,min=8,max=128"`
	Name     string      `json:"name" binding:"required,max=100"`
	Role     models.Role `json:"role" binding:"required,role"`
}

// CreateCompany creates a company owned by the authenticated user
// @Summary     Create company
// @Description Create a new company and make the caller its manager
// @Tags        companies
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CompanyRequest true "Company data"
// @Success     201 {object} models.Company "Created company"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /companies [post]
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	company, err := h.companyService.CreateCompany(userID, req.Name, req.Address, req.CurrencySymbol)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusCreated, company)
}

// GetCompanies lists the caller's companies
// @Summary     List companies
// @Description Get a paginated list of companies owned by the caller
// @Tags        companies
// @Produce     json
// @Security    BearerAuth
// @Param       page  query int false "Page number"  default(1)
// @Param       limit query int false "Items per page" default(10)
// @Success     200 {object} pagination.PageResponse[models.Company] "Paginated companies"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /companies [get]
func (h *CompanyHandler) GetCompanies(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.companyService.GetUserCompanies(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, result)
}

// GetCompany fetches one company
// @Summary     Get company
// @Description Get a company by ID
// @Tags        companies
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Company ID"
// @Success     200 {object} models.Company "Company"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /companies/{id} [get]
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	companyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	company, err := h.companyService.GetCompanyByID(companyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, company)
}

// UpdateCompany updates a company
// @Summary     Update company
// @Description Update a company's name, address or currency symbol
// @Tags        companies
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int            true "Company ID"
// @Param       request body CompanyRequest true "Company data"
// @Success     200 {object} models.Company "Updated company"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /companies/{id} [patch]
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	companyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	company, err := h.companyService.UpdateCompany(companyID, req.Name, req.Address, req.CurrencySymbol)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, company)
}

// DeleteCompany deletes a company
// @Summary     Delete company
// @Description Soft-delete a company
// @Tags        companies
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Company ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /companies/{id} [delete]
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	companyID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.companyService.DeleteCompany(companyID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Company deleted successfully"})
}

// InviteUser adds a user to the active company
// @Summary     Invite user
// @Description Create a user account attached to the active company with a role
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body InviteUserRequest true "User data"
// @Success     201 {object} UserResponse "Created user"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already in use"
// @Router      /users [post]
func (h *CompanyHandler) InviteUser(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InviteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.CreateUser(req.Email, req.Password, req.Name, req.Role, &companyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusCreated, userResponse(user))
}

// GetCompanyUsers lists the active company's users
// @Summary     List company users
// @Description Get a paginated list of users in the active company
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       page  query int false "Page number"  default(1)
// @Param       limit query int false "Items per page" default(10)
// @Success     200 {object} pagination.PageResponse[models.User] "Paginated users"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /users [get]
func (h *CompanyHandler) GetCompanyUsers(c *gin.Context) {
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

	result, err := h.userService.GetCompanyUsers(companyID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, result)
}
