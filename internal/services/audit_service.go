package services

import (
	"gorm.io/gorm"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/logger"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
)

// auditService records who changed what. Logging must never break the
// operation being logged, so failures are swallowed after a log line.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log writes an audit entry. Errors are logged and discarded.
func (s *auditService) Log(userID, companyID uint, action, resourceType string, resourceID uint, ipAddress, changes string) {
	entry := models.AuditLog{
		UserID:       userID,
		CompanyID:    companyID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changes,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		logger.Get().Errorw("failed to write audit log",
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"error", err,
		)
	}
}

// GetCompanyLogs retrieves a paginated audit trail for a company,
// newest first.
func (s *auditService) GetCompanyLogs(companyID uint, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	page.Defaults()

	base := s.db.Model(&models.AuditLog{}).Where("company_id = ?", companyID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var logs []models.AuditLog
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(logs, page.Page, page.Limit, totalItems)
	return &result, nil
}
