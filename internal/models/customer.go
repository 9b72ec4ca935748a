package models

// Customer represents a party invoices are issued to.
type Customer struct {
	Base
	CompanyID uint   `gorm:"not null;index" json:"company_id"`
	Name      string `gorm:"not null" json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}
