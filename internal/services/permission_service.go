package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
)

// permissionService resolves what a role may do per module within a
// company. Policies are read on every request so they sit behind a
// short-lived in-process cache.
type permissionService struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewPermissionService creates a new PermissionServicer.
func NewPermissionService(db *gorm.DB) PermissionServicer {
	return &permissionService{
		db:    db,
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

func permissionCacheKey(companyID uint, role models.Role) string {
	return fmt.Sprintf("perm:%d:%s", companyID, role)
}

func scopeCacheKey(companyID uint) string {
	return fmt.Sprintf("scope:%d", companyID)
}

// GetRolePermissions returns the grant map for a role in a company,
// keyed by module name. Modules without a stored row are absent; the
// caller treats absence as denied.
func (s *permissionService) GetRolePermissions(companyID uint, role models.Role) (map[string]Grant, error) {
	key := permissionCacheKey(companyID, role)
	if cached, found := s.cache.Get(key); found {
		return cached.(map[string]Grant), nil
	}

	var rows []models.Permission
	if err := s.db.Where("company_id = ? AND role = ?", companyID, role).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	grants := make(map[string]Grant, len(rows))
	for _, row := range rows {
		grants[row.Module] = Grant{
			Create: row.CanCreate,
			View:   row.CanView,
			Edit:   row.CanEdit,
			Delete: row.CanDelete,
		}
	}

	s.cache.Set(key, grants, cache.DefaultExpiration)
	return grants, nil
}

// ReplaceRolePermissions overwrites the full grant map for a role.
// Modules missing from the new map lose any previous grants.
func (s *permissionService) ReplaceRolePermissions(companyID uint, role models.Role, grants map[string]Grant) error {
	if role == models.RoleManager {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "manager permissions cannot be edited")
	}
	for module := range grants {
		if !models.ValidModule(module) {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown module %q", module))
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ? AND role = ?", companyID, role).
			Delete(&models.Permission{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for module, grant := range grants {
			row := models.Permission{
				CompanyID: companyID,
				Role:      role,
				Module:    module,
				CanCreate: grant.Create,
				CanView:   grant.View,
				CanEdit:   grant.Edit,
				CanDelete: grant.Delete,
			}
			if err := tx.Create(&row).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Delete(permissionCacheKey(companyID, role))
	return nil
}

// Allowed reports whether a role may perform an action on a module.
// Managers bypass the policy table entirely.
func (s *permissionService) Allowed(companyID uint, role models.Role, module, action string) (bool, error) {
	if role == models.RoleManager {
		return true, nil
	}

	grants, err := s.GetRolePermissions(companyID, role)
	if err != nil {
		return false, err
	}

	grant, ok := grants[module]
	if !ok {
		return false, nil
	}

	switch action {
	case "create":
		return grant.Create, nil
	case "view":
		return grant.View, nil
	case "edit":
		return grant.Edit, nil
	case "delete":
		return grant.Delete, nil
	default:
		return false, nil
	}
}

// GetAuditScope returns the storage and method visibility lists for a
// company's audit role. A nil scope means the audit role sees all.
func (s *permissionService) GetAuditScope(companyID uint) (*models.AuditScope, error) {
	key := scopeCacheKey(companyID)
	if cached, found := s.cache.Get(key); found {
		if cached == nil {
			return nil, nil
		}
		return cached.(*models.AuditScope), nil
	}

	var scope models.AuditScope
	if err := s.db.Where("company_id = ?", companyID).First(&scope).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.cache.Set(key, nil, cache.DefaultExpiration)
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.cache.Set(key, &scope, cache.DefaultExpiration)
	return &scope, nil
}

// SetAuditScope upserts the audit visibility lists for a company.
func (s *permissionService) SetAuditScope(companyID uint, storageIDs, methodIDs []uint) (*models.AuditScope, error) {
	var scope models.AuditScope
	err := s.db.Where("company_id = ?", companyID).First(&scope).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	scope.CompanyID = companyID
	scope.SetStorages(storageIDs)
	scope.SetMethods(methodIDs)

	if err := s.db.Save(&scope).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.cache.Delete(scopeCacheKey(companyID))
	return &scope, nil
}
