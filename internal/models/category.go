package models

// TransactionType represents the direction of money movement
type TransactionType string

const (
	TransactionTypeInflow  TransactionType = "inflow"
	TransactionTypeOutflow TransactionType = "outflow"
)

// AuditStatus marks whether a category is visible to the audit role
type AuditStatus string

const (
	AuditStatusAuditable AuditStatus = "auditable"
	AuditStatusHidden    AuditStatus = "hidden"
)

// Category represents a transaction category. Categories form a forest
// keyed by ParentID; a parent must share the child's Type.
type Category struct {
	Base
	CompanyID   uint            `gorm:"not null;index" json:"company_id"`
	Name        string          `gorm:"not null" json:"name"`
	Type        TransactionType `gorm:"not null" json:"type"`
	ParentID    *uint           `json:"parent_id,omitempty"`
	AuditStatus AuditStatus     `gorm:"not null;default:'auditable'" json:"audit_status"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`

	// Relationships
	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}
