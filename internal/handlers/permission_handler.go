package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/services"
)

// PermissionHandler handles role-permission and audit-scope requests
type PermissionHandler struct {
	permissionService services.PermissionServicer
}

// NewPermissionHandler creates a new PermissionHandler
func NewPermissionHandler(permissionService services.PermissionServicer) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

// ReplacePermissionsRequest is the full grant map for one role
type ReplacePermissionsRequest struct {
	Role   models.Role               `json:"role" binding:"required,role"`
	Grants map[string]services.Grant `json:"grants" binding:"required"`
}

// AuditScopeRequest sets the audit role's visibility lists
type AuditScopeRequest struct {
	StorageIDs []uint `json:"storages"`
	MethodIDs  []uint `json:"methods"`
}

// AuditScopeResponse is the decoded audit scope
type AuditScopeResponse struct {
	StorageIDs []uint `json:"storages"`
	MethodIDs  []uint `json:"methods"`
}

// GetRolePermissions returns a role's grant map
// @Summary     Get role permissions
// @Description Get the module grant map for a role in the active company
// @Tags        permissions
// @Produce     json
// @Security    BearerAuth
// @Param       role query string true "manager, user or audit"
// @Success     200 {object} map[string]services.Grant "Grant map"
// @Failure     400 {object} ErrorResponse "Invalid role"
// @Router      /permissions [get]
func (h *PermissionHandler) GetRolePermissions(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	role := models.Role(c.Query("role"))
	if role != models.RoleManager && role != models.RoleUser && role != models.RoleAudit {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid role"))
		return
	}

	grants, err := h.permissionService.GetRolePermissions(companyID, role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, grants)
}

// ReplaceRolePermissions overwrites a role's grant map
// @Summary     Replace role permissions
// @Description Overwrite the full module grant map for a role; manager permissions are immutable
// @Tags        permissions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ReplacePermissionsRequest true "Role and grant map"
// @Success     200 {object} map[string]string "Updated"
// @Failure     400 {object} ErrorResponse "Invalid role or module"
// @Router      /permissions [post]
func (h *PermissionHandler) ReplaceRolePermissions(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReplacePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.permissionService.ReplaceRolePermissions(companyID, req.Role, req.Grants); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Permissions updated successfully"})
}

// GetAuditScope returns the audit role's visibility lists
// @Summary     Get audit scope
// @Description Get the storage and method visibility lists for the audit role
// @Tags        permissions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} AuditScopeResponse "Audit scope"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /permissions/audit-scope [get]
func (h *PermissionHandler) GetAuditScope(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	scope, err := h.permissionService.GetAuditScope(companyID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	response := AuditScopeResponse{}
	if scope != nil {
		response.StorageIDs = scope.Storages()
		response.MethodIDs = scope.Methods()
	}
	respondData(c, http.StatusOK, response)
}

// SetAuditScope sets the audit role's visibility lists
// @Summary     Set audit scope
// @Description Set the storage and method visibility lists for the audit role
// @Tags        permissions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AuditScopeRequest true "Visibility lists"
// @Success     200 {object} AuditScopeResponse "Updated audit scope"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /permissions/audit-scope [post]
func (h *PermissionHandler) SetAuditScope(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AuditScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	scope, err := h.permissionService.SetAuditScope(companyID, req.StorageIDs, req.MethodIDs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, AuditScopeResponse{
		StorageIDs: scope.Storages(),
		MethodIDs:  scope.Methods(),
	})
}
