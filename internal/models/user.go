package models

import "time"

// Role represents a user's permission role within a company
type Role string

const (
	RoleManager Role = "manager"
	RoleUser    Role = "user"
	RoleAudit   Role = "audit"
)

// User represents the user model in the database
type User struct {
	Base
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Password         string     `gorm:"not null" json:"-"`
	Name             string     `json:"name"`
	Role             Role       `gorm:"not null;default:'user'" json:"role"`
	CompanyID        *uint      `json:"company_id,omitempty"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string     `gorm:"size:64" json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	// Relationships
	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}
