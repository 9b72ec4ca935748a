package models

// Storage represents a named cash or bank account bucket. Balance starts
// at OpeningBalance and is maintained as transactions are created,
// archived, and restored.
type Storage struct {
	Base
	CompanyID      uint    `gorm:"not null;index" json:"company_id"`
	Name           string  `gorm:"not null" json:"name"`
	OpeningBalance float64 `gorm:"not null;default:0" json:"opening_balance"`
	Balance        float64 `gorm:"not null;default:0" json:"balance"`
	IsActive       bool    `gorm:"default:true" json:"is_active"`
}
