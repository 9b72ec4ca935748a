package models

// Method represents a payment method (e.g. cash, card, bank transfer).
type Method struct {
	Base
	CompanyID uint   `gorm:"not null;index" json:"company_id"`
	Name      string `gorm:"not null" json:"name"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`
}
