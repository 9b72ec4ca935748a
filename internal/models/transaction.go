package models

import (
	"time"

	"ledgerdesk/internal/uuid"

	"gorm.io/gorm"
)

// Transaction represents a financial transaction in the system.
//
// Amounts are float64 end to end; currency formatting (two decimals,
// symbol prefix) happens at presentation time only.
type Transaction struct {
	Base
	TCID       uint            `gorm:"column:tcid;not null;uniqueIndex:idx_tx_company_tcid" json:"tcid"`
	CompanyID  uint            `gorm:"not null;uniqueIndex:idx_tx_company_tcid;index" json:"company_id"`
	UserID     uint            `gorm:"not null" json:"user_id"`
	Date       time.Time       `gorm:"not null" json:"transaction_date"`
	Type       TransactionType `gorm:"not null" json:"transaction_type"`
	Amount     float64         `gorm:"not null" json:"transaction_amount"`
	CategoryID uint            `gorm:"not null" json:"category_id"`
	MethodID   uint            `gorm:"not null" json:"method_id"`
	StorageID  uint            `gorm:"not null" json:"storage_id"`

	InvoiceNumber string     `json:"invoice_number,omitempty"`
	InvoiceDate   *time.Time `json:"invoice_date,omitempty"`
	Details       string     `json:"details,omitempty"`
	Description   string     `json:"description,omitempty"`

	// IsDeleted is a reversible archive flag, distinct from hard
	// deletion: archived transactions move to the archive view and can
	// be restored.
	IsDeleted bool `gorm:"default:false;index" json:"is_deleted"`

	// CorrelationID is a stable public identifier independent of the
	// database key, used in exports and external references.
	CorrelationID string `gorm:"size:36;index" json:"correlation_id"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"transaction_category"`
	Method   Method   `gorm:"foreignKey:MethodID" json:"transaction_method"`
	Storage  Storage  `gorm:"foreignKey:StorageID" json:"storage"`
}

// BeforeCreate assigns a UUIDv7 correlation identifier and a
// per-company display TCID when not supplied by the caller.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.CorrelationID == "" {
		t.CorrelationID = uuid.New()
	}
	if t.TCID == 0 {
		var max uint
		row := tx.Model(&Transaction{}).
			Where("company_id = ?", t.CompanyID).
			Select("COALESCE(MAX(tcid), 0)").
			Row()
		if err := row.Scan(&max); err != nil {
			return err
		}
		t.TCID = max + 1
	}
	return nil
}
