package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/pagination"
	"ledgerdesk/internal/services"
)

// AuditLogHandler exposes the company audit trail
type AuditLogHandler struct {
	auditService services.AuditServicer
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(auditService services.AuditServicer) *AuditLogHandler {
	return &AuditLogHandler{auditService: auditService}
}

// GetAuditLogs lists audit entries
// @Summary     List audit logs
// @Description Get a paginated audit trail for the active company, newest first
// @Tags        audit
// @Produce     json
// @Security    BearerAuth
// @Param       page  query int false "Page number"  default(1)
// @Param       limit query int false "Items per page" default(10)
// @Success     200 {object} pagination.PageResponse[models.AuditLog] "Paginated audit logs"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /audit-logs [get]
func (h *AuditLogHandler) GetAuditLogs(c *gin.Context) {
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

	result, err := h.auditService.GetCompanyLogs(companyID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondData(c, http.StatusOK, result)
}
