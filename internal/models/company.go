package models

// Company represents an organization whose books are managed in the system.
// Every ledger entity (categories, transactions, storages, invoices, ...)
// belongs to exactly one company.
type Company struct {
	Base
	Name           string `gorm:"not null" json:"name"`
	Address        string `json:"address"`
	CurrencySymbol string `gorm:"not null;default:'£'" json:"currency_symbol"`
	OwnerID        uint   `gorm:"not null" json:"owner_id"`

	// Relationships
	Users []User `gorm:"foreignKey:CompanyID" json:"users,omitempty"`
}
