package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
	"ledgerdesk/internal/services"
)

// CategoryHandler handles category management requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name        string                 `json:"name" binding:"required,max=255"`
	Type        models.TransactionType `json:"transaction_type" binding:"required,transaction_type"`
	ParentID    *uint                  `json:"parent_id"`
	AuditStatus models.AuditStatus     `json:"audit_status" binding:"omitempty,audit_status"`
}

// UpdateCategoryRequest represents the category update payload
type UpdateCategoryRequest struct {
	Name        string              `json:"name" binding:"required,max=255"`
	ParentID    *uint               `json:"parent_id"`
	AuditStatus *models.AuditStatus `json:"audit_status" binding:"omitempty,audit_status"`
}

// CreateCategory creates a category
// @Summary     Create category
// @Description Create a category for the active company
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCategoryRequest true "Category data"
// @Success     201 {object} models.Category "Created category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.AuditStatus == "" {
		req.AuditStatus = models.AuditStatusAuditable
	}

	category, err := h.categoryService.CreateCategory(companyID, req.Name, req.Type, req.ParentID, req.AuditStatus)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusCreated, category)
}

// GetCategories lists categories
// @Summary     List categories
// @Description Get a paginated list of the active company's categories, optionally filtered by type
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       transaction_type query string false "inflow or outflow"
// @Param       page  query int false "Page number"  default(1)
// @Param       limit query int false "Items per page" default(10)
// @Success     200 {object} pagination.PageResponse[models.Category] "Paginated categories"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /categories [get]
func (h *CategoryHandler) GetCategories(c *gin.Context) {
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

	var categoryType *models.TransactionType
	if raw := c.Query("transaction_type"); raw != "" {
		t := models.TransactionType(raw)
		if t != models.TransactionTypeInflow && t != models.TransactionTypeOutflow {
			respondWithError(c, apperrors.ErrInvalidTransactionType)
			return
		}
		categoryType = &t
	}

	result, err := h.categoryService.GetCompanyCategories(companyID, categoryType, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, result)
}

// GetCategoryTree returns the category hierarchy for a type
// @Summary     Get category tree
// @Description Get the active company's categories of one type as a parent-linked forest
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       transaction_type query string true "inflow or outflow"
// @Success     200 {array} services.CategoryNode "Category forest"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /categories/tree [get]
func (h *CategoryHandler) GetCategoryTree(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryType := models.TransactionType(c.Query("transaction_type"))
	if categoryType != models.TransactionTypeInflow && categoryType != models.TransactionTypeOutflow {
		respondWithError(c, apperrors.ErrInvalidTransactionType)
		return
	}

	tree, err := h.categoryService.GetCategoryTree(companyID, categoryType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, tree)
}

// GetCategory fetches one category
// @Summary     Get category
// @Description Get a category by ID
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {object} models.Category "Category"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(companyID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, category)
}

// UpdateCategory updates a category
// @Summary     Update category
// @Description Update a category's name, parent or audit status
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                   true "Category ID"
// @Param       request body UpdateCategoryRequest true "Category data"
// @Success     200 {object} models.Category "Updated category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /categories/{id} [patch]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(companyID, categoryID, req.Name, req.ParentID, req.AuditStatus)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, category)
}

// DeleteCategory deletes a category
// @Summary     Delete category
// @Description Soft-delete a category; blocked while it has children
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Category ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Category has children"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(companyID, categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
