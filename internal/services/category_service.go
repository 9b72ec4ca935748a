package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "ledgerdesk/internal/errors"
	"ledgerdesk/internal/models"
	"ledgerdesk/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(
	companyID uint,
	name string,
	categoryType models.TransactionType,
	parentID *uint,
	auditStatus models.AuditStatus,
) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	// Check if a category with the same name already exists for this company
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("company_id = ? AND name = ? AND type = ?", companyID, name, categoryType).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if count > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category with this name already exists")
	}

	// A parent must exist, belong to the company, and share the type:
	// the console only ever offers same-type categories as parents.
	if parentID != nil {
		parent, err := s.GetCategoryByID(companyID, *parentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrCategoryNotFound) {
				return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
			}
			return nil, err
		}
		if parent.Type != categoryType {
			return nil, apperrors.ErrParentTypeMismatch
		}
	}

	if auditStatus == "" {
		auditStatus = models.AuditStatusAuditable
	}

	category := &models.Category{
		CompanyID:   companyID,
		Name:        name,
		Type:        categoryType,
		ParentID:    parentID,
		AuditStatus: auditStatus,
		IsActive:    true,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetCompanyCategories retrieves a paginated list of categories for a
// company, optionally filtered to one type.
func (s *categoryService) GetCompanyCategories(companyID uint, categoryType *models.TransactionType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("company_id = ?", companyID)
	if categoryType != nil {
		base = base.Where("type = ?", *categoryType)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Order("id").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.Limit, totalItems)
	return &result, nil
}

// GetCategoryTree loads every category of the given type for a company
// and assembles the parent-linked forest. A type with no categories
// yields an empty forest, not an error.
func (s *categoryService) GetCategoryTree(companyID uint, categoryType models.TransactionType) ([]*CategoryNode, error) {
	var categories []models.Category
	if err := s.db.
		Where("company_id = ? AND type = ?", companyID, categoryType).
		Order("id").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return BuildCategoryTree(categories), nil
}

// GetCategoryByID retrieves a category by ID for a specific company
func (s *categoryService) GetCategoryByID(companyID, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND company_id = ?", categoryID, companyID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates an existing category
func (s *categoryService) UpdateCategory(
	companyID uint,
	categoryID uint,
	name string,
	parentID *uint,
	auditStatus *models.AuditStatus,
) (*models.Category, error) {
	category, err := s.GetCategoryByID(companyID, categoryID)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if *parentID == categoryID {
			return nil, apperrors.ErrSelfParentCategory
		}
		parent, err := s.GetCategoryByID(companyID, *parentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrCategoryNotFound) {
				return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
			}
			return nil, err
		}
		if parent.Type != category.Type {
			return nil, apperrors.ErrParentTypeMismatch
		}
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if parentID != nil {
		updates["parent_id"] = parentID
	}
	if auditStatus != nil {
		updates["audit_status"] = *auditStatus
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// DeleteCategory deletes a category
func (s *categoryService) DeleteCategory(companyID, categoryID uint) error {
	category, err := s.GetCategoryByID(companyID, categoryID)
	if err != nil {
		return err
	}

	// Check if there are any child categories
	var childCount int64
	if err := s.db.Model(&models.Category{}).Where("parent_id = ?", categoryID).Count(&childCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if childCount > 0 {
		return apperrors.ErrCategoryHasChildren
	}

	// Soft-delete the category. Existing transactions keep their
	// category_id reference for historical records.
	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
