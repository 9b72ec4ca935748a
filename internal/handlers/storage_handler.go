package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/pagination"
	"ledgerdesk/internal/services"
)

// StorageHandler handles storage (bank/cash bucket) management requests
type StorageHandler struct {
	storageService services.StorageServicer
}

// NewStorageHandler creates a new StorageHandler
func NewStorageHandler(storageService services.StorageServicer) *StorageHandler {
	return &StorageHandler{storageService: storageService}
}

// CreateStorageRequest represents the storage create payload
type CreateStorageRequest struct {
	Name           string  `json:"name" binding:"required,max=255"`
	OpeningBalance float64 `json:"opening_balance"`
}

// UpdateStorageRequest represents the storage update payload
type UpdateStorageRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	IsActive *bool  `json:"is_active"`
}

// CreateStorage creates a storage
// @Summary     Create storage
// @Description Create a storage with an opening balance for the active company
// @Tags        storages
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateStorageRequest true "Storage data"
// @Success     201 {object} models.Storage "Created storage"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /storages [post]
func (h *StorageHandler) CreateStorage(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateStorageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	storage, err := h.storageService.CreateStorage(companyID, req.Name, req.OpeningBalance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusCreated, storage)
}

// GetStorages lists storages
// @Summary     List storages
// @Description Get a paginated list of the active company's storages
// @Tags        storages
// @Produce     json
// @Security    BearerAuth
// @Param       page  query int false "Page number"  default(1)
// @Param       limit query int false "Items per page" default(10)
// @Success     200 {object} pagination.PageResponse[models.Storage] "Paginated storages"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /storages [get]
func (h *StorageHandler) GetStorages(c *gin.Context) {
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

	result, err := h.storageService.GetCompanyStorages(companyID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, result)
}

// UpdateStorage updates a storage
// @Summary     Update storage
// @Description Update a storage's name or active flag; the opening balance is immutable
// @Tags        storages
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                  true "Storage ID"
// @Param       request body UpdateStorageRequest true "Storage data"
// @Success     200 {object} models.Storage "Updated storage"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /storages/{id} [patch]
func (h *StorageHandler) UpdateStorage(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	storageID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateStorageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	storage, err := h.storageService.UpdateStorage(companyID, storageID, req.Name, req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, storage)
}

// DeleteStorage deletes a storage
// @Summary     Delete storage
// @Description Soft-delete a storage; blocked while transactions reference it
// @Tags        storages
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Storage ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Storage in use"
// @Router      /storages/{id} [delete]
func (h *StorageHandler) DeleteStorage(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	storageID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.storageService.DeleteStorage(companyID, storageID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Storage deleted successfully"})
}
